// Package runner assembles a complete search run from configuration.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/api"
	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/gate"
	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/sonjayce/TianyanchaAutosearch/scraper"
	"github.com/sonjayce/TianyanchaAutosearch/sink"
	"github.com/sonjayce/TianyanchaAutosearch/webhook"
)

// Options are the per-invocation inputs of a run.
type Options struct {
	// Keyword skips the interactive prompt when set.
	Keyword string
	// In and Out carry the console prompts.
	In  io.Reader
	Out io.Writer
	// Progress, when set, is updated during the run.
	Progress *scraper.Progress
	// Remote, when set, is the gate used in remote mode so the caller can
	// resume it directly as well as over HTTP.
	Remote *gate.Remote
}

// Gates builds the captcha gate and keyword prompter for cfg.Gate.Mode.
// In remote mode the returned *gate.Remote is also non-nil.
func Gates(cfg config.GateConfig, opts Options) (gate.Gate, gate.Prompter, *gate.Remote, error) {
	console, prompter := gate.NewConsolePair(opts.In, opts.Out)
	var p gate.Prompter = prompter
	if opts.Keyword != "" {
		p = gate.Fixed(opts.Keyword)
	}

	switch cfg.Mode {
	case "", "console":
		return console, p, nil, nil
	case "remote":
		remote := opts.Remote
		if remote == nil {
			remote = gate.NewRemote()
		}
		return remote, p, remote, nil
	default:
		return nil, nil, nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown gate mode %q", cfg.Mode), nil)
	}
}

// StartGateServer serves the gate API on cfg.Addr until the returned stop
// function is called.
func StartGateServer(cfg config.GateConfig, progress *scraper.Progress, remote *gate.Remote) (func(), error) {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("gate api listen: %w", err)
	}
	srv := &http.Server{
		Handler:           api.NewRouter(cfg, progress, remote, time.Now()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("gate API listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("gate API error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("gate API forced shutdown", "error", err)
		}
	}, nil
}

// Run launches the browser, runs one search and releases everything it
// acquired, whatever the outcome.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*scraper.RunResult, error) {
	progress := opts.Progress
	if progress == nil {
		progress = scraper.NewProgress()
	}

	g, prompter, remote, err := Gates(cfg.Gate, opts)
	if err != nil {
		return nil, err
	}
	if remote != nil {
		stop, err := StartGateServer(cfg.Gate, progress, remote)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	out, closeSink, err := sink.New(cfg.Output)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeSink(); err != nil {
			slog.Warn("sink close failed", "error", err)
		}
	}()

	var notifier scraper.Notifier
	if n := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret); n != nil {
		notifier = n
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := n.Flush(flushCtx); err != nil {
				slog.Warn("webhook deliveries still pending at exit", "error", err)
			}
		}()
	}

	sess, err := scraper.NewSession(ctx, cfg.Browser)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	wf, err := scraper.NewWorkflow(*cfg, scraper.Deps{
		Page:          sess.Page(ctx),
		Screenshotter: sess,
		Gate:          g,
		Prompter:      prompter,
		Sink:          out,
		Notifier:      notifier,
		Progress:      progress,
	})
	if err != nil {
		return nil, err
	}
	return wf.Run(ctx)
}
