package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// Extractor reads the result table of a loaded page into Records.
type Extractor struct {
	page         Page
	pacer        *Pacer
	attempts     int
	tableTimeout time.Duration
	rowTimeout   time.Duration
	backoff      time.Duration
}

// NewExtractor creates an Extractor making up to attempts tries per page.
// tableTimeout bounds the table re-fetch, rowTimeout the wait for its rows.
func NewExtractor(page Page, pacer *Pacer, attempts int, tableTimeout, rowTimeout, backoff time.Duration) *Extractor {
	if attempts < 1 {
		attempts = 1
	}
	return &Extractor{
		page:         page,
		pacer:        pacer,
		attempts:     attempts,
		tableTimeout: tableTimeout,
		rowTimeout:   rowTimeout,
		backoff:      backoff,
	}
}

// Extract returns the rows of the current page. A row that goes stale or
// cannot be fully read is skipped; any other failure restarts the attempt
// and only the rows of the successful attempt are returned.
func (x *Extractor) Extract(ctx context.Context) ([]models.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= x.attempts; attempt++ {
		records, err := x.attempt(ctx)
		if err == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		slog.Warn("extraction attempt failed", "attempt", attempt, "of", x.attempts, "error", err)

		if attempt < x.attempts {
			if err := x.pacer.Pause(ctx, x.backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, models.NewScrapeError(
		models.ErrCodeExtraction,
		fmt.Sprintf("extraction failed after %d attempts", x.attempts),
		lastErr,
	)
}

func (x *Extractor) attempt(ctx context.Context) ([]models.Record, error) {
	// Re-fetch every attempt; earlier handles may belong to a replaced DOM.
	table, err := x.page.WaitElement(x.tableTimeout, SelectorResultsTable)
	if err != nil {
		return nil, fmt.Errorf("results table: %w", err)
	}
	if err := x.pacer.Scroll(ctx, x.page, table); err != nil {
		return nil, err
	}

	rows, err := x.page.WaitElements(x.rowTimeout, SelectorResultsTable+" "+SelectorResultRows)
	if err != nil {
		return nil, fmt.Errorf("result rows: %w", err)
	}

	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		rowHTML, err := row.HTML()
		if errors.Is(err, models.ErrStaleElement) {
			slog.Warn("row went stale, skipping", "row", i+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rec, err := parseRow(rowHTML)
		if err != nil {
			slog.Warn("row incomplete, skipping", "row", i+1, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
