// Package sink persists the records of a run.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// Batch is everything collected by one run.
type Batch struct {
	RunID   string
	Keyword string
	Records []models.Record
}

// Sink writes a batch once at the end of a run and returns where it went.
// Every Sink returns models.ErrNoRecords for an empty batch and writes nothing.
type Sink interface {
	Save(ctx context.Context, b Batch) (string, error)
}

// New builds the sink described by cfg. The returned close function
// releases any database handle and is never nil.
func New(cfg config.OutputConfig) (Sink, func() error, error) {
	var primary Sink
	switch cfg.Format {
	case "", "csv":
		primary = NewCSV(filepath.Join(cfg.Dir, "result.csv"))
	case "xlsx":
		primary = NewXLSX(filepath.Join(cfg.Dir, "result.xlsx"))
	default:
		return nil, nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown output format %q", cfg.Format), nil)
	}

	if cfg.SQLitePath == "" {
		return primary, func() error { return nil }, nil
	}
	archive, err := OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	return Multi(primary, archive), archive.Close, nil
}

type multi struct {
	sinks []Sink
}

// Multi saves to every sink in order and returns the first sink's location.
// Errors from all sinks are joined.
func Multi(sinks ...Sink) Sink {
	return &multi{sinks: sinks}
}

func (m *multi) Save(ctx context.Context, b Batch) (string, error) {
	if len(b.Records) == 0 {
		return "", models.ErrNoRecords
	}
	var (
		first string
		errs  []error
	)
	for i, s := range m.sinks {
		loc, err := s.Save(ctx, b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if i == 0 {
			first = loc
		}
	}
	return first, errors.Join(errs...)
}
