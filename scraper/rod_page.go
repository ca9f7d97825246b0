package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// staleMarkers are CDP error messages raised when a remote object or node
// no longer exists, i.e. the DOM was re-rendered under us.
var staleMarkers = []string{
	"Could not find node with given id",
	"No node with given id found",
	"Cannot find context with specified id",
	"Could not find object with given id",
	"Node is detached from document",
	"Node does not belong to the document",
}

// classifyError maps rod/CDP errors onto the sentinels the workflow branches on.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", models.ErrStaleElement, err)
		}
	}
	return err
}

// rodPage adapts *rod.Page to Page. All calls are bound to the run context.
type rodPage struct {
	page *rod.Page
}

func newRodPage(ctx context.Context, page *rod.Page) *rodPage {
	return &rodPage{page: page.Context(ctx)}
}

func (p *rodPage) Navigate(url string) error {
	return classifyError(p.page.Navigate(url))
}

func (p *rodPage) WaitFirst(timeout time.Duration, selectors ...string) (string, error) {
	if len(selectors) == 0 {
		return "", errors.New("WaitFirst: no selectors")
	}
	pg := p.page.Timeout(timeout)
	defer pg.CancelTimeout()

	var matched string
	race := pg.Race()
	for _, sel := range selectors {
		race = race.Element(sel).Handle(func(*rod.Element) error {
			matched = sel
			return nil
		})
	}
	if _, err := race.Do(); err != nil {
		return "", classifyError(err)
	}
	return matched, nil
}

func (p *rodPage) WaitElement(timeout time.Duration, selector string) (Element, error) {
	pg := p.page.Timeout(timeout)
	defer pg.CancelTimeout()

	el, err := pg.Element(selector)
	if err != nil {
		return nil, classifyError(err)
	}
	// Rebind so the element outlives the wait deadline.
	return &rodElement{el: el.Context(p.page.GetContext())}, nil
}

func (p *rodPage) WaitElements(timeout time.Duration, selector string) ([]Element, error) {
	pg := p.page.Timeout(timeout)
	err := pg.WaitElementsMoreThan(selector, 0)
	pg.CancelTimeout()
	if err != nil {
		return nil, classifyError(err)
	}
	return p.Elements(selector)
}

func (p *rodPage) Elements(selector string) ([]Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, classifyError(err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (p *rodPage) Has(selector string) (bool, error) {
	has, _, err := p.page.Has(selector)
	return has, classifyError(err)
}

func (p *rodPage) ScrollBy(dy int) error {
	_, err := p.page.Eval(`(dy) => window.scrollBy(0, dy)`, dy)
	return classifyError(err)
}

func (p *rodPage) Maximize() error {
	return p.page.SetWindow(&proto.BrowserBounds{
		WindowState: proto.BrowserWindowStateMaximized,
	})
}

// rodElement adapts *rod.Element to Element.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Visible() (bool, error) {
	v, err := e.el.Visible()
	return v, classifyError(err)
}

func (e *rodElement) Hover() error {
	return classifyError(e.el.Hover())
}

func (e *rodElement) ScrollIntoView() error {
	_, err := e.el.Eval(`function() { this.scrollIntoView({behavior: 'smooth', block: 'center', inline: 'center'}) }`)
	return classifyError(err)
}

func (e *rodElement) Click() error {
	return classifyError(e.el.Click(proto.InputMouseButtonLeft, 1))
}

func (e *rodElement) ForceClick() error {
	_, err := e.el.Eval(`function() { this.click() }`)
	return classifyError(err)
}

func (e *rodElement) Input(text string) error {
	return classifyError(e.el.Input(text))
}

func (e *rodElement) HTML() (string, error) {
	html, err := e.el.HTML()
	return html, classifyError(err)
}
