package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/gate"
	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/sonjayce/TianyanchaAutosearch/sink"
)

// Screenshotter captures the viewport for post-mortem diagnosis.
type Screenshotter interface {
	Screenshot(path string) error
}

// Deps are the collaborators a Workflow drives. Page, Gate, Prompter and
// Sink are required.
type Deps struct {
	Page          Page
	Screenshotter Screenshotter
	Gate          gate.Gate
	Prompter      gate.Prompter
	Sink          sink.Sink
	Notifier      Notifier
	Progress      *Progress
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID       string
	Keyword     string
	Records     []models.Record
	PagesLoaded int
	Reason      models.StopReason
	// Output is where the records went; empty when nothing was saved.
	Output string
}

// Workflow is one keyword search from login to saved file.
type Workflow struct {
	cfg        config.Config
	page       Page
	shots      Screenshotter
	prompter   gate.Prompter
	sink       sink.Sink
	notifier   Notifier
	progress   *Progress
	pacer      *Pacer
	navigator  *Navigator
	controller *Controller
}

// NewWorkflow wires the search components around d.Page.
func NewWorkflow(cfg config.Config, d Deps) (*Workflow, error) {
	if d.Page == nil || d.Gate == nil || d.Prompter == nil || d.Sink == nil {
		return nil, errors.New("workflow: page, gate, prompter and sink are required")
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Progress == nil {
		d.Progress = NewProgress()
	}

	selectors := cfg.Search.PopupSelectors
	if len(selectors) == 0 {
		selectors = config.DefaultPopupSelectors
	}

	pacer := NewPacer(cfg.Pacing)
	popups, err := NewPopupCloser(selectors, pacer)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid popup selector", err)
	}
	captcha := NewCaptchaGuard(d.Gate, cfg.Search.CaptchaWait, d.Notifier, d.Progress)
	nav := NewNavigator(d.Page, popups, captcha, cfg.Search.LoadTimeout, NewLoadLimiter(cfg.Search.MaxLoadsPerMinute))
	ext := NewExtractor(d.Page, pacer, cfg.Search.ExtractAttempts,
		cfg.Search.LoadTimeout, cfg.Search.RowTimeout, cfg.Search.RetryBackoff)

	return &Workflow{
		cfg:        cfg,
		page:       d.Page,
		shots:      d.Screenshotter,
		prompter:   d.Prompter,
		sink:       d.Sink,
		notifier:   d.Notifier,
		progress:   d.Progress,
		pacer:      pacer,
		navigator:  nav,
		controller: NewController(cfg.Search.BaseURL, cfg.Search.MaxPages, d.Page, nav, ext, pacer, d.Progress),
	}, nil
}

// Run performs login intervention, reads the keyword, paginates and saves.
// Any error it returns aborted the run; the viewport was captured first and
// nothing was saved. The caller still owns and must close the session.
func (w *Workflow) Run(ctx context.Context) (res *RunResult, err error) {
	res = &RunResult{RunID: uuid.NewString()}
	w.progress.Start(res.RunID, "", w.controller.MaxPages())
	log := slog.With("run_id", res.RunID)

	defer func() {
		if r := recover(); r != nil {
			err = models.NewScrapeError(models.ErrCodeInternal, "panic during run", fmt.Errorf("%v", r))
		}
		if err != nil {
			log.Error("run aborted", "error", err)
			w.captureFailure(log)
			w.progress.Finish(res.Reason, err)
			w.notifier.Notify(EventRunFailed, w.progress.Snapshot())
			return
		}
		w.progress.Finish(res.Reason, nil)
		w.notifier.Notify(EventRunCompleted, w.progress.Snapshot())
	}()

	log.Info("starting login flow")
	if err := w.loginIntervention(ctx); err != nil {
		return res, err
	}

	keyword, err := w.prompter.Keyword(ctx)
	if err != nil {
		return res, err
	}
	res.Keyword = keyword
	w.progress.SetKeyword(keyword)

	log.Info("search started", "keyword", keyword)
	pr, err := w.controller.Run(ctx, keyword)
	if pr != nil {
		res.Records = pr.Records
		res.PagesLoaded = pr.PagesLoaded
		res.Reason = pr.Reason
	}
	if err != nil {
		return res, err
	}
	log.Info("search finished", "reason", res.Reason, "pages", res.PagesLoaded, "records", len(res.Records))

	out, err := w.sink.Save(ctx, sink.Batch{RunID: res.RunID, Keyword: keyword, Records: res.Records})
	switch {
	case errors.Is(err, models.ErrNoRecords):
		log.Warn("no records to save")
		return res, nil
	case err != nil && out == "":
		return res, fmt.Errorf("save results: %w", err)
	case err != nil:
		log.Warn("results saved with errors", "output", out, "error", err)
	}
	res.Output = out
	log.Info("results saved", "records", len(res.Records), "output", out)
	return res, nil
}

// loginIntervention opens the portal home page and, when a login control is
// shown, clicks it the way a person would and clears any captcha. A missing
// or unclickable control is not an error.
func (w *Workflow) loginIntervention(ctx context.Context) error {
	home := strings.TrimRight(w.cfg.Search.BaseURL, "/") + "/"
	if err := w.page.Navigate(home); err != nil {
		return models.NewScrapeError(models.ErrCodeNavigation, "open home page", err)
	}
	if err := w.page.Maximize(); err != nil {
		slog.Debug("maximize failed", "error", err)
	}
	if _, err := w.navigator.popups.Dismiss(ctx, w.page); err != nil {
		return err
	}

	has, err := w.page.Has(SelectorLoginButton)
	if err != nil || !has {
		return nil
	}
	btn, err := w.page.WaitElement(w.cfg.Search.RowTimeout, SelectorLoginButton)
	if err != nil {
		slog.Info("login control not ready, skipping", "error", err)
		return nil
	}
	if err := w.pacer.Scroll(ctx, w.page, btn); err != nil {
		return err
	}
	if err := w.pacer.Delay(ctx, btn); err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		slog.Info("login click failed, skipping", "error", err)
		return nil
	}

	err = w.navigator.captcha.Check(ctx, w.page)
	if errors.Is(err, models.ErrCaptchaUnresolved) {
		return nil
	}
	return err
}

func (w *Workflow) captureFailure(log *slog.Logger) {
	if w.shots == nil || w.cfg.Output.ScreenshotPath == "" {
		return
	}
	if err := w.shots.Screenshot(w.cfg.Output.ScreenshotPath); err != nil {
		log.Warn("failure screenshot not saved", "error", err)
		return
	}
	log.Info("failure screenshot saved", "path", w.cfg.Output.ScreenshotPath)
}
