package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andybalholm/cascadia"
)

// popupSettle is the pause after a successful dismissal so the overlay's
// close animation finishes before the next strategy looks.
const popupSettle = time.Second

// DismissStrategy removes one kind of overlay. Dismiss reports whether it
// acted; a false result with a nil error means "not applicable".
type DismissStrategy interface {
	Name() string
	Dismiss(page Page) (bool, error)
}

// selectorDismisser force-clicks the first visible match of a CSS selector.
type selectorDismisser struct {
	selector string
}

func (d selectorDismisser) Name() string { return d.selector }

func (d selectorDismisser) Dismiss(page Page) (bool, error) {
	els, err := page.Elements(d.selector)
	if err != nil {
		return false, err
	}
	if len(els) == 0 {
		return false, nil
	}
	el := els[0]
	visible, err := el.Visible()
	if err != nil || !visible {
		return false, err
	}
	if err := el.ForceClick(); err != nil {
		return false, err
	}
	return true, nil
}

// PopupCloser runs its strategies in order after every navigation.
// It never fails the caller.
type PopupCloser struct {
	strategies []DismissStrategy
	pacer      *Pacer
}

// NewPopupCloser builds selector strategies in the given order. Selectors are
// parsed up front so a typo in configuration fails at startup instead of
// silently never matching.
func NewPopupCloser(selectors []string, pacer *Pacer) (*PopupCloser, error) {
	strategies := make([]DismissStrategy, 0, len(selectors))
	for _, sel := range selectors {
		if _, err := cascadia.Parse(sel); err != nil {
			return nil, fmt.Errorf("popup selector %q: %w", sel, err)
		}
		strategies = append(strategies, selectorDismisser{selector: sel})
	}
	return &PopupCloser{strategies: strategies, pacer: pacer}, nil
}

// WithStrategies appends extra strategies after the selector ones.
func (c *PopupCloser) WithStrategies(extra ...DismissStrategy) *PopupCloser {
	c.strategies = append(c.strategies, extra...)
	return c
}

// Dismiss tries every strategy once and returns how many acted.
// Only context cancellation is returned as an error.
func (c *PopupCloser) Dismiss(ctx context.Context, page Page) (int, error) {
	closed := 0
	for _, s := range c.strategies {
		ok, err := s.Dismiss(page)
		if err != nil {
			slog.Debug("popup strategy failed", "strategy", s.Name(), "error", err)
			continue
		}
		if !ok {
			continue
		}
		closed++
		slog.Info("popup dismissed", "strategy", s.Name())
		if err := c.pacer.Pause(ctx, popupSettle); err != nil {
			return closed, err
		}
	}
	return closed, nil
}
