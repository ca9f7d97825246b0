package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// HardMaxPages is the absolute pagination cap. Configuration may lower it,
// never raise it.
const HardMaxPages = 10

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig
	Search  SearchConfig
	Pacing  PacingConfig
	Output  OutputConfig
	Gate    GateConfig
	Webhook WebhookConfig
	Log     LogConfig
	Fofa    FofaConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. The captcha gate
	// needs a visible window, so the default is false.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to Chromium as --proxy-server.
	Proxy string

	// UserAgents is the pool one client identity is picked from per session.
	UserAgents []string

	// AcceptLanguage is sent with every request.
	AcceptLanguage string // default: "zh-CN,zh;q=0.9,en;q=0.8"

	// BlockedResourceTypes lists resource types to block, e.g. "Image".
	// default: none
	BlockedResourceTypes []string
}

// SearchConfig controls navigation, extraction and pagination.
type SearchConfig struct {
	// BaseURL is the lookup portal root.
	BaseURL string // default: "https://beian.tianyancha.com"

	// MaxPages is the pagination cap, clamped to [1, HardMaxPages].
	MaxPages int // default: 10

	// LoadTimeout bounds the wait for the results table or the no-data placeholder.
	LoadTimeout time.Duration // default: 20s

	// CaptchaWait is how long each page waits for a captcha to show up.
	CaptchaWait time.Duration // default: 10s

	// RowTimeout bounds the wait for result rows under the table.
	RowTimeout time.Duration // default: 10s

	// ExtractAttempts is the per-page extraction retry cap.
	ExtractAttempts int // default: 3

	// RetryBackoff is the pause between failed extraction attempts.
	RetryBackoff time.Duration // default: 2s

	// MaxLoadsPerMinute throttles page loads on top of the human pacing.
	MaxLoadsPerMinute int // default: 20

	// PopupSelectors overrides the ordered popup close-control selectors.
	PopupSelectors []string
}

// PacingConfig holds the ranges of the human-like interaction primitives.
type PacingConfig struct {
	DelayMin     time.Duration // default: 500ms
	DelayMax     time.Duration // default: 3s
	KeystrokeMin time.Duration // default: 100ms
	KeystrokeMax time.Duration // default: 300ms
	ScrollMin    int           // default: 300
	ScrollMax    int           // default: 700
	PageDelayMin time.Duration // default: 1s
	PageDelayMax time.Duration // default: 3s
}

// OutputConfig controls the result sink.
type OutputConfig struct {
	// Dir is the directory the result file is written into.
	Dir string // default: "result"

	// Format is "csv" or "xlsx".
	Format string // default: "csv"

	// SQLitePath, when set, additionally archives records into SQLite.
	SQLitePath string

	// ScreenshotPath receives the viewport capture on fatal errors.
	ScreenshotPath string // default: "error.png"
}

// GateConfig controls how the operator is reached on captcha.
type GateConfig struct {
	// Mode is "console" or "remote".
	Mode string // default: "console"

	// Addr is the listen address of the remote gate API.
	Addr string // default: "127.0.0.1:8765"

	// Tokens are accepted API keys for the remote gate. Empty means open.
	Tokens []string

	// GinMode is "debug", "release" or "test".
	GinMode string // default: "release"

	// RequestsPerSecond is the sustained API rate per key or client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per key or client IP.
	Burst int // default: 5
}

// WebhookConfig controls event notifications.
type WebhookConfig struct {
	URL    string
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// FofaConfig controls the downstream query generator.
type FofaConfig struct {
	Input  string // default: "result/result.csv"
	Output string // default: "fofa.txt"
}

// DefaultUserAgents is the client identity pool used when none is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36",
}

// DefaultPopupSelectors are the overlay close controls tried after every navigation.
var DefaultPopupSelectors = []string{
	"div.popup-close",
	"div.mask-layer",
	"i.icon-close",
	"div.modal-close",
	"button.btn-close",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:             envBoolOr("BEIAN_HEADLESS", false),
			NoSandbox:            envBoolOr("BEIAN_NO_SANDBOX", false),
			BrowserBin:           os.Getenv("BEIAN_BROWSER_BIN"),
			Proxy:                os.Getenv("BEIAN_PROXY"),
			UserAgents:           envSliceSepOr("BEIAN_USER_AGENTS", "|", DefaultUserAgents),
			AcceptLanguage:       envOr("BEIAN_ACCEPT_LANGUAGE", "zh-CN,zh;q=0.9,en;q=0.8"),
			BlockedResourceTypes: envSliceOr("BEIAN_BLOCKED_RESOURCES", nil),
		},
		Search: SearchConfig{
			BaseURL:           envOr("BEIAN_BASE_URL", "https://beian.tianyancha.com"),
			MaxPages:          ClampPages(envIntOr("BEIAN_MAX_PAGES", HardMaxPages)),
			LoadTimeout:       envDurationOr("BEIAN_LOAD_TIMEOUT", 20*time.Second),
			CaptchaWait:       envDurationOr("BEIAN_CAPTCHA_WAIT", 10*time.Second),
			RowTimeout:        envDurationOr("BEIAN_ROW_TIMEOUT", 10*time.Second),
			ExtractAttempts:   envIntOr("BEIAN_EXTRACT_ATTEMPTS", 3),
			RetryBackoff:      envDurationOr("BEIAN_RETRY_BACKOFF", 2*time.Second),
			MaxLoadsPerMinute: envIntOr("BEIAN_MAX_LOADS_PER_MINUTE", 20),
			PopupSelectors:    envSliceOr("BEIAN_POPUP_SELECTORS", DefaultPopupSelectors),
		},
		Pacing: DefaultPacing(),
		Output: OutputConfig{
			Dir:            envOr("BEIAN_OUTPUT_DIR", "result"),
			Format:         strings.ToLower(envOr("BEIAN_OUTPUT_FORMAT", "csv")),
			SQLitePath:     os.Getenv("BEIAN_SQLITE_PATH"),
			ScreenshotPath: envOr("BEIAN_SCREENSHOT_PATH", "error.png"),
		},
		Gate: GateConfig{
			Mode:    strings.ToLower(envOr("BEIAN_GATE_MODE", "console")),
			Addr:    envOr("BEIAN_GATE_ADDR", "127.0.0.1:8765"),
			Tokens:  envSliceOr("BEIAN_GATE_TOKENS", nil),
			GinMode: envOr("BEIAN_GIN_MODE", "release"),

			RequestsPerSecond: envFloatOr("BEIAN_GATE_RPS", 2.0),
			Burst:             envIntOr("BEIAN_GATE_BURST", 5),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("BEIAN_WEBHOOK_URL"),
			Secret: os.Getenv("BEIAN_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("BEIAN_LOG_LEVEL", "info"),
			Format: envOr("BEIAN_LOG_FORMAT", "text"),
		},
		Fofa: FofaConfig{
			Input:  envOr("FOFA_INPUT", "result/result.csv"),
			Output: envOr("FOFA_OUTPUT", "fofa.txt"),
		},
	}
}

// DefaultPacing returns the human-like timing ranges, overridable per key.
func DefaultPacing() PacingConfig {
	return PacingConfig{
		DelayMin:     envDurationOr("BEIAN_DELAY_MIN", 500*time.Millisecond),
		DelayMax:     envDurationOr("BEIAN_DELAY_MAX", 3*time.Second),
		KeystrokeMin: envDurationOr("BEIAN_KEYSTROKE_MIN", 100*time.Millisecond),
		KeystrokeMax: envDurationOr("BEIAN_KEYSTROKE_MAX", 300*time.Millisecond),
		ScrollMin:    envIntOr("BEIAN_SCROLL_MIN", 300),
		ScrollMax:    envIntOr("BEIAN_SCROLL_MAX", 700),
		PageDelayMin: envDurationOr("BEIAN_PAGE_DELAY_MIN", time.Second),
		PageDelayMax: envDurationOr("BEIAN_PAGE_DELAY_MAX", 3*time.Second),
	}
}

// ClampPages bounds a requested page count to [1, HardMaxPages].
func ClampPages(n int) int {
	if n < 1 {
		return 1
	}
	if n > HardMaxPages {
		return HardMaxPages
	}
	return n
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	return envSliceSepOr(key, ",", fallback)
}

// envSliceSepOr splits on sep; user agents contain commas, so they use "|".
func envSliceSepOr(key, sep string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, sep)
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
