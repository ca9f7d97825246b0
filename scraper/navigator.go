package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/models"
	"golang.org/x/time/rate"
)

// BuildSearchURL derives the results URL of target under base.
func BuildSearchURL(base string, target models.SearchTarget) string {
	return fmt.Sprintf("%s/search/%s/p%d",
		strings.TrimRight(base, "/"), url.PathEscape(target.Keyword), target.Page)
}

// Navigator loads search pages and clears interruptions after each load.
type Navigator struct {
	page        Page
	popups      *PopupCloser
	captcha     *CaptchaGuard
	loadTimeout time.Duration
	limiter     *rate.Limiter
}

// NewNavigator creates a Navigator. A nil limiter disables throttling.
func NewNavigator(page Page, popups *PopupCloser, captcha *CaptchaGuard, loadTimeout time.Duration, limiter *rate.Limiter) *Navigator {
	return &Navigator{
		page:        page,
		popups:      popups,
		captcha:     captcha,
		loadTimeout: loadTimeout,
		limiter:     limiter,
	}
}

// NewLoadLimiter allows perMinute page loads per minute with a burst of one.
// A non-positive perMinute returns nil.
func NewLoadLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// LoadPage navigates to url and waits for either the results table or the
// no-data placeholder, whichever shows first. Failures are not retried.
func (n *Navigator) LoadPage(ctx context.Context, url string) error {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if err := n.page.Navigate(url); err != nil {
		slog.Error("navigation failed", "url", url, "error", err)
		return models.NewScrapeError(models.ErrCodeNavigation, "navigation failed: "+url, err)
	}

	matched, err := n.page.WaitFirst(n.loadTimeout, SelectorResultsTable, SelectorNoData)
	if err != nil {
		slog.Error("page load timed out", "url", url, "timeout", n.loadTimeout)
		return models.NewScrapeError(models.ErrCodeTimeout, "page load timed out: "+url, err)
	}
	slog.Debug("page ready", "url", url, "matched", matched)

	if err := n.Interruptions(ctx); err != nil {
		return err
	}
	return nil
}

// Interruptions dismisses popups and runs the captcha check on the current
// page. An unresolved captcha is logged and tolerated.
func (n *Navigator) Interruptions(ctx context.Context) error {
	if n.popups != nil {
		if _, err := n.popups.Dismiss(ctx, n.page); err != nil {
			return err
		}
	}
	if n.captcha == nil {
		return nil
	}
	err := n.captcha.Check(ctx, n.page)
	if errors.Is(err, models.ErrCaptchaUnresolved) {
		slog.Warn("continuing with captcha possibly still shown")
		return nil
	}
	return err
}
