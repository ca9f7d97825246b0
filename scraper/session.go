package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/ysmood/gson"
)

// webdriverPatchJS hides the navigator-level automation marker. stealth.JS
// covers it too; the explicit patch keeps it in place if stealth changes.
const webdriverPatchJS = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Session owns the browser process and the single tab the workflow drives.
// It is created once per run and must be closed on every exit path.
type Session struct {
	browser   *rod.Browser
	page      *rod.Page
	router    *rod.HijackRouter
	userAgent string
	closeOnce sync.Once
}

// NewSession launches Chromium with fingerprint-reduction flags and opens a
// stealth tab. Launch failures are fatal for the run.
func NewSession(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	ua := pickUserAgent(cfg.UserAgents, rand.IntN)

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Automation-detection flags ───────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("user-agent"), ua)
	l.Set(flags.Flag("start-maximized"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))

	l = l.Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "userAgent", ua)

	browser := rod.New().ControlURL(controlURL)
	if err := attach(browser.Connect, l.Kill); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	s := &Session{browser: browser, userAgent: ua}
	s.router = setupHijack(browser, cfg.BlockedResourceTypes)

	page, err := stealth.Page(browser)
	if err != nil {
		s.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open stealth page",
			err,
		)
	}
	s.page = page

	if _, err := page.EvalOnNewDocument(webdriverPatchJS); err != nil {
		slog.Warn("webdriver patch failed, proceeding with stealth only", "error", err)
	}

	if cfg.AcceptLanguage != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Accept-Language": gson.New(cfg.AcceptLanguage)},
		}.Call(page)
	}

	return s, nil
}

// attach connects to a launched browser and kills the process when the
// connection fails, so no orphan Chromium is left behind.
func attach(connect func() error, kill func()) error {
	if err := connect(); err != nil {
		kill()
		return err
	}
	return nil
}

// pickUserAgent chooses one identity from pool using intn.
func pickUserAgent(pool []string, intn func(int) int) string {
	if len(pool) == 0 {
		pool = config.DefaultUserAgents
	}
	return pool[intn(len(pool))]
}

// Page returns the tab bound to ctx.
func (s *Session) Page(ctx context.Context) Page {
	return newRodPage(ctx, s.page)
}

// UserAgent returns the client identity chosen at launch.
func (s *Session) UserAgent() string {
	return s.userAgent
}

// Screenshot saves the current viewport as a PNG at path.
func (s *Session) Screenshot(path string) error {
	if s.page == nil {
		return fmt.Errorf("screenshot: no page open")
	}
	img, err := s.page.Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("screenshot: capture: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("screenshot: write: %w", err)
	}
	return nil
}

// Close stops request interception and kills the browser process.
// It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		if err := s.browser.Close(); err != nil {
			slog.Warn("browser close failed", "error", err)
			return
		}
		slog.Info("browser closed")
	})
}
