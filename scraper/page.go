package scraper

import "time"

// Selectors of the lookup portal's search pages.
const (
	SelectorResultsTable = "table.table.-ranking"
	SelectorNoData       = "div.no-data-container"
	SelectorResultRows   = "tbody tr:not(.no-data)"
	SelectorCaptcha      = `div[class*="geetest_btn_click"]`
	SelectorLoginButton  = "span.tyc-header-nav-login-btn"
)

// Page is the slice of browser-tab behaviour the workflow needs.
// The production implementation wraps a *rod.Page; tests use an in-memory fake.
type Page interface {
	// Navigate loads url in the tab.
	Navigate(url string) error

	// WaitFirst waits up to timeout for any of selectors to appear and
	// returns the one that matched first.
	WaitFirst(timeout time.Duration, selectors ...string) (string, error)

	// WaitElement waits up to timeout for selector to appear.
	WaitElement(timeout time.Duration, selector string) (Element, error)

	// WaitElements waits up to timeout for at least one match of selector
	// and returns all matches.
	WaitElements(timeout time.Duration, selector string) ([]Element, error)

	// Elements returns the current matches of selector without waiting.
	Elements(selector string) ([]Element, error)

	// Has reports whether selector currently matches anything.
	Has(selector string) (bool, error)

	// ScrollBy scrolls the window vertically by dy pixels.
	ScrollBy(dy int) error

	// Maximize maximizes the browser window.
	Maximize() error
}

// Element is a handle to a DOM node. Any method may fail with an error
// wrapping models.ErrStaleElement when the node was re-rendered.
type Element interface {
	Visible() (bool, error)
	Hover() error
	ScrollIntoView() error
	// Click performs a real pointer click.
	Click() error
	// ForceClick clicks through script injection, bypassing overlays.
	ForceClick() error
	Input(text string) error
	HTML() (string, error)
}
