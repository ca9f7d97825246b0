package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// utf8BOM lets spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes the header and one row per record to a single file.
type CSV struct {
	path string
}

// NewCSV creates a CSV sink writing to path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Save(_ context.Context, b Batch) (string, error) {
	if len(b.Records) == 0 {
		return "", models.ErrNoRecords
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return "", fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("failed to write UTF-8 BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.RecordHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, r := range b.Records {
		if err := w.Write(r.Values()); err != nil {
			return "", fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush result file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close result file: %w", err)
	}

	abs, err := filepath.Abs(c.path)
	if err != nil {
		return c.path, nil
	}
	return abs, nil
}
