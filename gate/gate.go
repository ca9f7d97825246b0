// Package gate suspends the automated flow until a human operator signals
// that it may continue.
package gate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// Gate blocks until the operator lets the run continue or ctx ends.
type Gate interface {
	Wait(ctx context.Context, reason string) error
}

// lineReader turns an io.Reader into a channel-friendly line source so a
// blocked read never outlives ctx in the caller's view.
type lineReader struct {
	once  sync.Once
	lines chan string
	errs  chan error
	r     io.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r, lines: make(chan string), errs: make(chan error, 1)}
}

func (l *lineReader) start() {
	l.once.Do(func() {
		go func() {
			sc := bufio.NewScanner(l.r)
			for sc.Scan() {
				l.lines <- sc.Text()
			}
			err := sc.Err()
			if err == nil {
				err = io.EOF
			}
			l.errs <- err
		}()
	})
}

// next returns the next line, the reader's terminal error, or ctx.Err().
func (l *lineReader) next(ctx context.Context) (string, error) {
	l.start()
	select {
	case line := <-l.lines:
		return line, nil
	case err := <-l.errs:
		// Keep the terminal error visible to later calls.
		l.errs <- err
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Console asks the operator on out and waits for Enter on in.
type Console struct {
	out io.Writer
	in  *lineReader
}

// NewConsole creates a console gate. The same reader must back every
// Console and Prompter of a process; use NewConsolePair for that.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{out: out, in: newLineReader(in)}
}

func (c *Console) Wait(ctx context.Context, reason string) error {
	fmt.Fprintf(c.out, "\n⚠️ %s\n✅ press Enter to continue...", reason)
	if _, err := c.in.next(ctx); err != nil {
		return fmt.Errorf("console gate: %w", err)
	}
	return nil
}

// Prompter reads the search keyword.
type Prompter interface {
	Keyword(ctx context.Context) (string, error)
}

// ConsolePrompter asks for the keyword on out and reads it from in.
type ConsolePrompter struct {
	out io.Writer
	in  *lineReader
}

func (p *ConsolePrompter) Keyword(ctx context.Context) (string, error) {
	fmt.Fprint(p.out, "请输入查询关键词：")
	line, err := p.in.next(ctx)
	if err != nil {
		return "", fmt.Errorf("read keyword: %w", err)
	}
	return ValidateKeyword(line)
}

// NewConsolePair returns a gate and a prompter sharing one stdin reader.
func NewConsolePair(in io.Reader, out io.Writer) (*Console, *ConsolePrompter) {
	lr := newLineReader(in)
	return &Console{out: out, in: lr}, &ConsolePrompter{out: out, in: lr}
}

// Fixed is a Prompter that always returns the same keyword.
type Fixed string

func (f Fixed) Keyword(context.Context) (string, error) {
	return ValidateKeyword(string(f))
}

// ValidateKeyword trims the keyword and rejects empty input.
func ValidateKeyword(s string) (string, error) {
	k := strings.TrimSpace(s)
	if k == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "keyword must not be empty", nil)
	}
	return k, nil
}

// Remote blocks until Resume is called, typically by the HTTP gate API.
type Remote struct {
	mu      sync.Mutex
	waiting chan struct{}
	reason  string
}

// NewRemote creates an idle remote gate.
func NewRemote() *Remote {
	return &Remote{}
}

// ErrNotWaiting is returned by Resume when no run is suspended.
var ErrNotWaiting = errors.New("gate is not waiting")

func (r *Remote) Wait(ctx context.Context, reason string) error {
	ch := make(chan struct{})
	r.mu.Lock()
	r.waiting = ch
	r.reason = reason
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.waiting == ch {
			r.waiting = nil
			r.reason = ""
		}
		r.mu.Unlock()
	}()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("remote gate: %w", ctx.Err())
	}
}

// Resume releases a suspended Wait.
func (r *Remote) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting == nil {
		return ErrNotWaiting
	}
	close(r.waiting)
	r.waiting = nil
	r.reason = ""
	return nil
}

// Pending reports whether a Wait is in progress and why.
func (r *Remote) Pending() (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting != nil, r.reason
}
