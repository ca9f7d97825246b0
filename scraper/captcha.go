package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/gate"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// Notifier publishes run events to an external channel (e.g. a webhook).
type Notifier interface {
	Notify(eventType string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, any) {}

// Event types published by the workflow.
const (
	EventCaptchaDetected = "captcha.detected"
	EventRunCompleted    = "run.completed"
	EventRunFailed       = "run.failed"
)

// captchaPrompt is shown to the operator while the run is suspended.
const captchaPrompt = "captcha detected: solve it in the browser window, then confirm to continue"

// CaptchaGuard detects the slider captcha and hands control to a human.
// Automated solving is deliberately not attempted.
type CaptchaGuard struct {
	gate     gate.Gate
	wait     time.Duration
	notifier Notifier
	progress *Progress
}

// NewCaptchaGuard creates a guard that waits up to wait for the captcha to show.
func NewCaptchaGuard(g gate.Gate, wait time.Duration, notifier Notifier, progress *Progress) *CaptchaGuard {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if progress == nil {
		progress = NewProgress()
	}
	return &CaptchaGuard{gate: g, wait: wait, notifier: notifier, progress: progress}
}

// Check returns nil when no captcha appeared within the wait window or the
// operator cleared it. It returns models.ErrCaptchaUnresolved when the
// captcha is still shown after the operator resumed; callers treat that as
// a timeout-class condition and carry on. Gate errors are returned as is.
func (g *CaptchaGuard) Check(ctx context.Context, page Page) error {
	el, err := page.WaitElement(g.wait, SelectorCaptcha)
	if err != nil {
		// Nothing showed up in time: the common, silent case.
		return nil
	}
	visible, err := el.Visible()
	if err != nil || !visible {
		return nil
	}

	slog.Warn("captcha detected, waiting for operator")
	g.progress.SetCaptchaPending(true)
	g.notifier.Notify(EventCaptchaDetected, g.progress.Snapshot())

	err = g.gate.Wait(ctx, captchaPrompt)
	g.progress.SetCaptchaPending(false)
	if err != nil {
		return err
	}

	if still, _ := page.Has(SelectorCaptcha); still {
		slog.Warn("captcha still present after operator resume")
		return models.NewScrapeError(models.ErrCodeCaptchaUnresolved, "captcha not cleared", models.ErrCaptchaUnresolved)
	}
	slog.Info("captcha cleared, resuming")
	return nil
}
