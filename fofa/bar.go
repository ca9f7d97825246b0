package fofa

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	barFill  = "█"
	barEmpty = "-"
)

// Bar renders a single-line progress bar that redraws in place.
type Bar struct {
	w     io.Writer
	width int
	label string
}

// NewBar creates a bar sized to the terminal on fd, or 30 cells when fd is
// not a terminal.
func NewBar(w io.Writer, fd int, label string) *Bar {
	width := 30
	if term.IsTerminal(fd) {
		if cols, _, err := term.GetSize(fd); err == nil {
			// Leave room for the label, brackets and percentage.
			if avail := cols - runewidth.StringWidth(label) - 12; avail < width {
				width = max(avail, 10)
			}
		}
	}
	return &Bar{w: w, width: width, label: label}
}

// Render returns the bar line for done out of total.
func (b *Bar) Render(done, total int) string {
	if total <= 0 {
		total = 1
	}
	done = min(max(done, 0), total)
	filled := b.width * done / total
	pct := float64(done) / float64(total) * 100

	var sb strings.Builder
	sb.WriteString(b.label)
	sb.WriteString("[")
	sb.WriteString(strings.Repeat(barFill, filled))
	sb.WriteString(strings.Repeat(barEmpty, b.width-filled))
	fmt.Fprintf(&sb, "] %.1f%%", pct)
	return sb.String()
}

// Update redraws the bar. It matches ProgressFunc.
func (b *Bar) Update(done, total int) {
	fmt.Fprint(b.w, "\r"+b.Render(done, total))
}

// Done ends the bar line.
func (b *Bar) Done() {
	fmt.Fprintln(b.w)
}
