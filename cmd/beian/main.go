package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/runner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "\n❗ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ── 1. Load configuration ───────────────────────────────────────
	_ = godotenv.Load()
	cfg := config.Load()

	keyword := flag.String("keyword", "", "search keyword (prompted when empty)")
	maxPages := flag.Int("max-pages", cfg.Search.MaxPages, "pages to visit, at most 10")
	outDir := flag.String("out", cfg.Output.Dir, "result directory")
	format := flag.String("format", cfg.Output.Format, "result format: csv or xlsx")
	gateMode := flag.String("gate", cfg.Gate.Mode, "captcha gate: console or remote")
	headless := flag.Bool("headless", cfg.Browser.Headless, "run the browser headless")
	flag.Parse()

	cfg.Search.MaxPages = config.ClampPages(*maxPages)
	cfg.Output.Dir = *outDir
	cfg.Output.Format = *format
	cfg.Gate.Mode = *gateMode
	cfg.Browser.Headless = *headless

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	fmt.Println("=== 天眼查备案信息自动查询程序 ===")
	slog.Info("beian starting",
		"maxPages", cfg.Search.MaxPages,
		"gate", cfg.Gate.Mode,
		"format", cfg.Output.Format,
		"headless", cfg.Browser.Headless,
	)
	if cfg.Browser.Headless && cfg.Gate.Mode == "console" {
		slog.Warn("headless browser with console gate: captchas cannot be solved by hand")
	}

	// ── 3. Run until done or interrupted ────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx, cfg, runner.Options{
		Keyword: *keyword,
		In:      os.Stdin,
		Out:     os.Stdout,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("interrupted")
			return nil
		}
		return err
	}

	if res.Output == "" {
		fmt.Println("⚠️ 无有效数据可保存")
	} else {
		fmt.Printf("💾 成功保存 %d 条数据至：%s\n", len(res.Records), res.Output)
	}
	slog.Info("beian stopped", "run_id", res.RunID, "reason", res.Reason)
	return nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
