package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/xuri/excelize/v2"
)

// XLSX writes the records into the first sheet of a workbook.
type XLSX struct {
	path string
}

// NewXLSX creates an XLSX sink writing to path.
func NewXLSX(path string) *XLSX {
	return &XLSX{path: path}
}

func (x *XLSX) Save(_ context.Context, b Batch) (string, error) {
	if len(b.Records) == 0 {
		return "", models.ErrNoRecords
	}
	if err := os.MkdirAll(filepath.Dir(x.path), 0o755); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range models.RecordHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}
	for r, rec := range b.Records {
		for c, v := range rec.Values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("write record %d: %w", r+1, err)
			}
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	abs, err := filepath.Abs(x.path)
	if err != nil {
		return x.path, nil
	}
	return abs, nil
}
