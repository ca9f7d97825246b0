package scraper

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/config"
)

// Pacer provides human-like delay, typing and scrolling so interaction
// timing is not uniform. Browser failures inside a primitive are logged
// and swallowed; only context cancellation is returned.
type Pacer struct {
	cfg   config.PacingConfig
	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a Pacer seeded from the runtime's random source.
func NewPacer(cfg config.PacingConfig) *Pacer {
	return &Pacer{
		cfg:   cfg,
		rnd:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sleep: sleepCtx,
	}
}

// sleepCtx blocks for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// between returns a uniformly random duration in [lo, hi].
func (p *Pacer) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(p.rnd.Int64N(int64(hi-lo)+1))
}

// Delay waits a random [DelayMin, DelayMax] duration. With a target element
// it first moves the pointer onto it and pauses half the delay there
// before waiting out the rest.
func (p *Pacer) Delay(ctx context.Context, el Element) error {
	d := p.between(p.cfg.DelayMin, p.cfg.DelayMax)
	if el != nil {
		if err := el.Hover(); err != nil {
			slog.Debug("hover failed", "error", err)
		}
		half := d / 2
		if err := p.sleep(ctx, half); err != nil {
			return err
		}
		d -= half
	}
	return p.sleep(ctx, d)
}

// Type sends text one rune at a time with a random keystroke gap.
func (p *Pacer) Type(ctx context.Context, el Element, text string) error {
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			slog.Debug("keystroke failed", "error", err)
		}
		if err := p.sleep(ctx, p.between(p.cfg.KeystrokeMin, p.cfg.KeystrokeMax)); err != nil {
			return err
		}
	}
	return nil
}

// Scroll centers el in the viewport, or scrolls the window by a random
// distance when el is nil, then waits a human delay.
func (p *Pacer) Scroll(ctx context.Context, page Page, el Element) error {
	if el != nil {
		if err := el.ScrollIntoView(); err != nil {
			slog.Debug("scroll into view failed", "error", err)
		}
	} else {
		lo, hi := p.cfg.ScrollMin, p.cfg.ScrollMax
		dy := lo
		if hi > lo {
			dy = lo + p.rnd.IntN(hi-lo+1)
		}
		if err := page.ScrollBy(dy); err != nil {
			slog.Debug("window scroll failed", "error", err)
		}
	}
	return p.Delay(ctx, nil)
}

// PageDelay is the pacing sleep between two result pages.
func (p *Pacer) PageDelay(ctx context.Context) error {
	return p.sleep(ctx, p.between(p.cfg.PageDelayMin, p.cfg.PageDelayMax))
}

// Pause sleeps a fixed duration, honoring ctx.
func (p *Pacer) Pause(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}
