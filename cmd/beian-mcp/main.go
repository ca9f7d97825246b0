package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/fofa"
	"github.com/sonjayce/TianyanchaAutosearch/gate"
	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/sonjayce/TianyanchaAutosearch/runner"
	"github.com/sonjayce/TianyanchaAutosearch/scraper"
)

// searchResult is the beian_search tool payload.
type searchResult struct {
	RunID       string            `json:"run_id"`
	Keyword     string            `json:"keyword"`
	PagesLoaded int               `json:"pages_loaded"`
	StopReason  models.StopReason `json:"stop_reason"`
	Output      string            `json:"output,omitempty"`
	Records     []models.Record   `json:"records"`
}

// service runs one search at a time on behalf of MCP clients.
type service struct {
	cfg      *config.Config
	mu       sync.Mutex
	progress *scraper.Progress
	remote   *gate.Remote
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// stdout carries the MCP protocol: logs go to stderr and the captcha
	// gate cannot read the console.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	gin.DefaultWriter = os.Stderr
	cfg.Gate.Mode = "remote"

	svc := &service{cfg: cfg, progress: scraper.NewProgress(), remote: gate.NewRemote()}

	s := server.NewMCPServer(
		"beian",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("beian_search",
		mcp.WithDescription("Search ICP beian registrations on beian.tianyancha.com for a keyword and return every record found. Opens a real browser; if a captcha appears, solve it in the browser window and call captcha_resume."),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Company name, site name, domain or registration number to search for"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Result pages to visit, 1 to 10 (default 10)"),
		),
	)
	s.AddTool(searchTool, svc.handleSearch)

	statusTool := mcp.NewTool("beian_status",
		mcp.WithDescription("Report the progress of the current or last beian_search run, including whether it waits on a captcha."),
	)
	s.AddTool(statusTool, svc.handleStatus)

	resumeTool := mcp.NewTool("captcha_resume",
		mcp.WithDescription("Tell a beian_search run that the captcha in the browser window has been solved."),
	)
	s.AddTool(resumeTool, svc.handleResume)

	fofaTool := mcp.NewTool("fofa_query",
		mcp.WithDescription("Build a fofa search expression (domain=\"a\"||domain=\"b\"...) from a beian result CSV."),
		mcp.WithString("input",
			mcp.Description("Path of the result CSV (default: result/result.csv)"),
		),
	)
	s.AddTool(fofaTool, svc.handleFofa)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func (s *service) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword, err := request.RequireString("keyword")
	if err != nil || strings.TrimSpace(keyword) == "" {
		return mcp.NewToolResultError("keyword is required"), nil
	}

	if !s.mu.TryLock() {
		return mcp.NewToolResultError("a search is already running; check beian_status"), nil
	}
	defer s.mu.Unlock()

	cfg := *s.cfg
	cfg.Search.MaxPages = config.ClampPages(request.GetInt("max_pages", cfg.Search.MaxPages))

	res, err := runner.Run(ctx, &cfg, runner.Options{
		Keyword:  keyword,
		In:       strings.NewReader(""),
		Out:      io.Discard,
		Progress: s.progress,
		Remote:   s.remote,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("[%s] %v", models.CodeOf(err), err)), nil
	}

	body, err := json.MarshalIndent(searchResult{
		RunID:       res.RunID,
		Keyword:     res.Keyword,
		PagesLoaded: res.PagesLoaded,
		StopReason:  res.Reason,
		Output:      res.Output,
		Records:     res.Records,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *service) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(s.progress.Snapshot(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *service) handleResume(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.remote.Resume(); err != nil {
		if errors.Is(err, gate.ErrNotWaiting) {
			return mcp.NewToolResultError("no search is waiting on a captcha"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("resumed"), nil
}

func (s *service) handleFofa(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := request.GetString("input", s.cfg.Fofa.Input)

	f, err := os.Open(in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open %s: %v", in, err)), nil
	}
	defer f.Close()

	expr, stats, err := fofa.Build(f, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slog.Info("fofa expression built", "rows", stats.Rows, "domains", stats.Domains)
	return mcp.NewToolResultText(expr), nil
}
