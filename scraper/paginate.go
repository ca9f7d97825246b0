package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/sonjayce/TianyanchaAutosearch/simhash"
)

// repeatThreshold is the simhash distance under which two consecutive pages
// are reported as likely the same content.
const repeatThreshold = 3

// PageRunResult is what a pagination run accumulated and why it stopped.
type PageRunResult struct {
	Records     []models.Record
	PagesLoaded int
	Reason      models.StopReason
}

// Controller walks the result pages of one keyword.
type Controller struct {
	baseURL   string
	maxPages  int
	page      Page
	navigator *Navigator
	extractor *Extractor
	pacer     *Pacer
	progress  *Progress
}

// NewController creates a Controller. maxPages is clamped to [1, config.HardMaxPages].
func NewController(baseURL string, maxPages int, page Page, nav *Navigator, ext *Extractor, pacer *Pacer, progress *Progress) *Controller {
	if progress == nil {
		progress = NewProgress()
	}
	return &Controller{
		baseURL:   baseURL,
		maxPages:  config.ClampPages(maxPages),
		page:      page,
		navigator: nav,
		extractor: ext,
		pacer:     pacer,
		progress:  progress,
	}
}

// MaxPages returns the effective page cap.
func (c *Controller) MaxPages() int {
	return c.maxPages
}

// Run loads pages 1..MaxPages until one of the stop conditions holds.
// Stopping is not an error: the result always carries what was collected.
// Only context cancellation is returned as an error, alongside the partial result.
func (c *Controller) Run(ctx context.Context, keyword string) (*PageRunResult, error) {
	res := &PageRunResult{}
	var prevFP uint64

	for p := 1; p <= c.maxPages; p++ {
		if err := ctx.Err(); err != nil {
			res.Reason = models.StopCanceled
			return res, err
		}

		target := models.SearchTarget{Keyword: keyword, Page: p}
		url := BuildSearchURL(c.baseURL, target)
		c.progress.PageStarted(p)
		slog.Info("loading page", "page", p, "of", c.maxPages, "url", url)

		outcome, records, err := c.visit(ctx, url)
		if err != nil && ctx.Err() != nil {
			res.Reason = models.StopCanceled
			return res, ctx.Err()
		}

		switch outcome {
		case models.LoadTimeout:
			slog.Error("page load failed, stopping", "page", p, "error", err)
			res.Reason = models.StopReasonFor(outcome)
			return res, nil
		case models.ReadyEmpty:
			slog.Info("last page reached", "page", p)
			res.Reason = models.StopReasonFor(outcome)
			return res, nil
		case models.ExtractionFailed:
			slog.Error("extraction failed, stopping", "page", p, "error", err)
			res.Reason = models.StopReasonFor(outcome)
			return res, nil
		}

		res.PagesLoaded++
		res.Records = append(res.Records, records...)
		c.progress.PageDone(len(records))
		slog.Info("page extracted", "page", p, "records", len(records), "total", len(res.Records))

		fp := pageFingerprint(records)
		if p > 1 && fp != 0 && simhash.Similar(fp, prevFP, repeatThreshold) {
			slog.Warn("page content repeats the previous page", "page", p)
		}
		prevFP = fp

		if p < c.maxPages {
			if err := c.pacer.PageDelay(ctx); err != nil {
				res.Reason = models.StopCanceled
				return res, err
			}
		}
	}

	res.Reason = models.StopPageCap
	slog.Info("page cap reached", "pages", c.maxPages)
	return res, nil
}

// visit loads one page and classifies it.
func (c *Controller) visit(ctx context.Context, url string) (models.PageOutcome, []models.Record, error) {
	if err := c.navigator.LoadPage(ctx, url); err != nil {
		return models.LoadTimeout, nil, err
	}

	empty, err := c.page.Has(SelectorNoData)
	if err != nil && !errors.Is(err, models.ErrStaleElement) {
		slog.Debug("no-data check failed", "error", err)
	}
	if empty {
		return models.ReadyEmpty, nil, nil
	}

	records, err := c.extractor.Extract(ctx)
	if err != nil {
		return models.ExtractionFailed, nil, err
	}
	return models.ReadyWithData, records, nil
}

func pageFingerprint(records []models.Record) uint64 {
	tokens := make([]string, 0, len(records)*5)
	for _, r := range records {
		tokens = append(tokens, r.Values()...)
	}
	return simhash.Fingerprint(tokens)
}
