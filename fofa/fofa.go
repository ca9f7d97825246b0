// Package fofa turns an exported result file into a fofa search expression
// matching every domain in it.
package fofa

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// HeaderCandidates are the accepted names of the domain column, in priority order.
var HeaderCandidates = []string{"domain", "网站域名"}

// Separator joins the per-domain fragments.
const Separator = "||"

// Stats describes one transform.
type Stats struct {
	Rows    int
	Domains int
}

// ProgressFunc is told how many data rows have been processed out of total.
type ProgressFunc func(done, total int)

// Build reads CSV from r and returns the expression
// domain="a"||domain="b"... over every non-empty domain value, in file order.
func Build(r io.Reader, progress ProgressFunc) (string, Stats, error) {
	var stats Stats

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", stats, fmt.Errorf("read input: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xEF\xBB\xBF"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return "", stats, fmt.Errorf("parse input: %w", err)
	}
	if len(rows) == 0 {
		return "", stats, fmt.Errorf("empty input: %w", models.ErrHeaderNotFound)
	}

	col := domainColumn(rows[0])
	if col < 0 {
		return "", stats, fmt.Errorf("header %q: %w", rows[0], models.ErrHeaderNotFound)
	}

	data := rows[1:]
	fragments := make([]string, 0, len(data))
	for i, row := range data {
		stats.Rows++
		if col < len(row) {
			if d := strings.TrimSpace(row[col]); d != "" {
				fragments = append(fragments, `domain="`+d+`"`)
			}
		}
		if progress != nil {
			progress(i+1, len(data))
		}
	}
	stats.Domains = len(fragments)
	if len(fragments) == 0 {
		return "", stats, models.ErrNoDomains
	}
	return strings.Join(fragments, Separator), stats, nil
}

func domainColumn(header []string) int {
	for _, name := range HeaderCandidates {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
	}
	return -1
}

// Convert builds the expression from the file at in and writes it to out.
// Nothing is written when Build fails.
func Convert(in, out string, progress ProgressFunc) (Stats, error) {
	f, err := os.Open(in)
	if err != nil {
		return Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	expr, stats, err := Build(f, progress)
	if err != nil {
		return stats, err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(expr), 0o644); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}
	return stats, nil
}

// IsInputError reports whether err is about the input content rather than I/O.
func IsInputError(err error) bool {
	return errors.Is(err, models.ErrHeaderNotFound) || errors.Is(err, models.ErrNoDomains)
}
