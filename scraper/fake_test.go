package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// rowsSelector is the full row selector the extractor waits on.
const rowsSelector = SelectorResultsTable + " " + SelectorResultRows

var errNotFound = errors.New("fake: element not found")

// fakePage is an in-memory Page. Selectors in present match a bare element;
// elements gives them concrete handles.
type fakePage struct {
	mu         sync.Mutex
	present    map[string]bool
	elements   map[string][]Element
	navErr     error
	onNavigate func(p *fakePage, url string)
	// rowErrs is consumed by WaitElements(rowsSelector) before it succeeds.
	rowErrs []error
	// waitTimeouts holds the last timeout each selector was waited with.
	waitTimeouts map[string]time.Duration
	visits       []string
	scrolls      []int
	maximized    int
}

func newFakePage() *fakePage {
	return &fakePage{
		present:      map[string]bool{},
		elements:     map[string][]Element{},
		waitTimeouts: map[string]time.Duration{},
	}
}

func (p *fakePage) set(sel string, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.present[sel] = on
}

func (p *fakePage) setElements(sel string, els ...Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[sel] = els
}

func (p *fakePage) has(sel string) bool {
	return p.present[sel] || len(p.elements[sel]) > 0
}

func (p *fakePage) Navigate(url string) error {
	p.mu.Lock()
	p.visits = append(p.visits, url)
	hook, err := p.onNavigate, p.navErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(p, url)
	}
	return nil
}

func (p *fakePage) WaitFirst(timeout time.Duration, selectors ...string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sel := range selectors {
		if p.has(sel) {
			return sel, nil
		}
	}
	return "", fmt.Errorf("wait %s: %w", timeout, context.DeadlineExceeded)
}

func (p *fakePage) WaitElement(timeout time.Duration, sel string) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitTimeouts[sel] = timeout
	if els := p.elements[sel]; len(els) > 0 {
		return els[0], nil
	}
	if p.present[sel] {
		return &fakeElement{visible: true}, nil
	}
	return nil, errNotFound
}

func (p *fakePage) WaitElements(timeout time.Duration, sel string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitTimeouts[sel] = timeout
	if sel == rowsSelector && len(p.rowErrs) > 0 {
		err := p.rowErrs[0]
		p.rowErrs = p.rowErrs[1:]
		return nil, err
	}
	if els := p.elements[sel]; len(els) > 0 {
		return els, nil
	}
	return nil, errNotFound
}

func (p *fakePage) Elements(sel string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[sel], nil
}

func (p *fakePage) Has(sel string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.has(sel), nil
}

func (p *fakePage) ScrollBy(dy int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls = append(p.scrolls, dy)
	return nil
}

func (p *fakePage) Maximize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maximized++
	return nil
}

func (p *fakePage) visitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visits)
}

// fakeElement records interactions.
type fakeElement struct {
	visible     bool
	html        string
	htmlErr     error
	failAll     error
	onClick     func()
	hovers      int
	scrolled    int
	clicks      int
	forceClicks int
	inputs      []string
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, e.failAll }

func (e *fakeElement) Hover() error {
	e.hovers++
	return e.failAll
}

func (e *fakeElement) ScrollIntoView() error {
	e.scrolled++
	return e.failAll
}

func (e *fakeElement) Click() error {
	if e.failAll != nil {
		return e.failAll
	}
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) ForceClick() error {
	if e.failAll != nil {
		return e.failAll
	}
	e.forceClicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Input(text string) error {
	e.inputs = append(e.inputs, text)
	return e.failAll
}

func (e *fakeElement) HTML() (string, error) { return e.html, e.htmlErr }

// rowElement renders a result row with the portal's six-cell layout.
func rowElement(num, operator, site, domain, date string) *fakeElement {
	return &fakeElement{visible: true, html: fmt.Sprintf(
		`<tr><td>1</td><td> %s </td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
		num, operator, site, domain, date)}
}

func staleRow() *fakeElement {
	return &fakeElement{htmlErr: fmt.Errorf("row html: %w", models.ErrStaleElement)}
}

// fakeGate counts waits and runs onWait before returning err.
type fakeGate struct {
	mu     sync.Mutex
	calls  int
	err    error
	onWait func()
}

func (g *fakeGate) Wait(ctx context.Context, reason string) error {
	g.mu.Lock()
	g.calls++
	hook, err := g.onWait, g.err
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (g *fakeGate) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// recordingNotifier captures published events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// recordingPacer returns a pacer that records sleeps instead of blocking.
func recordingPacer(cfg config.PacingConfig) (*Pacer, *[]time.Duration) {
	var slept []time.Duration
	p := NewPacer(cfg)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return p, &slept
}

// noPacing disables every random range so recorded sleeps are exact.
var noPacing = config.PacingConfig{}

func instantPacer() *Pacer {
	p, _ := recordingPacer(config.DefaultPacing())
	return p
}
