package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/check"
	"github.com/nao1215/mobileqa/internal/menu"
	"github.com/nao1215/mobileqa/internal/model"
	"github.com/nao1215/mobileqa/internal/pipeline"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "mobileqa"

	// DefaultOutputDir receives screenshots and the results document.
	DefaultOutputDir = "qa-mobile-screenshots"

	// DefaultNavigationTimeout bounds a single navigation, including the
	// wait for network idle. Marketing sites with heavy third-party tags
	// rarely go idle faster.
	DefaultNavigationTimeout = browser.DefaultNavigationTimeout

	// DefaultPageTimeout bounds everything after navigation: menu probe,
	// snapshot, checks and screenshots.
	DefaultPageTimeout = pipeline.DefaultPageTimeout

	// DefaultSettleDelay is the pause after load for late layout shifts.
	DefaultSettleDelay = pipeline.DefaultSettleDelay

	// DefaultMenuOpenWait and DefaultMenuCloseWait let menu animations finish.
	DefaultMenuOpenWait  = menu.DefaultOpenWait
	DefaultMenuCloseWait = menu.DefaultCloseWait

	// DefaultHistoryLimit is the number of runs listed by the history command.
	DefaultHistoryLimit = 20
)

// DefaultViewport is the emulated phone: an iPhone X class screen.
var DefaultViewport = model.Viewport{
	Width:  browser.DefaultWidth,
	Height: browser.DefaultHeight,
	Scale:  browser.DefaultScale,
}

// Config holds all configuration options for a QA run.
// It is populated from the config file first and CLI flags second, then
// passed down explicitly; there is no global configuration.
type Config struct {
	// BaseURL is the site under test, e.g. "https://staging.example.com".
	BaseURL string

	// Pages is the ordered catalog. Results keep this order.
	Pages []model.PageSpec

	// Viewport is the emulated device screen.
	Viewport model.Viewport

	// UserAgent overrides the emulated device's user agent when set.
	UserAgent string

	// Headers are extra HTTP headers sent with every request, typically
	// basic auth for a staging environment. They are never logged.
	Headers map[string]string

	// Thresholds overrides the pixel limits of the checks. Zero fields keep
	// their defaults.
	Thresholds check.Thresholds

	// DisabledChecks names built-in checks that are not run.
	// page_loads cannot be disabled.
	DisabledChecks []string

	// WaitUntil names the navigation completion signal, "networkidle" or
	// "load". Sites whose trackers keep polling never go network-idle and
	// need "load".
	WaitUntil string

	// NavigationTimeout bounds each navigation.
	NavigationTimeout time.Duration

	// PageTimeout bounds the work done on a loaded page.
	PageTimeout time.Duration

	// SettleDelay is the pause after load. Zero disables it.
	SettleDelay time.Duration

	// MenuOpenWait and MenuCloseWait are the pauses after menu clicks.
	MenuOpenWait  time.Duration
	MenuCloseWait time.Duration

	// OutputDir receives screenshots and the results document.
	OutputDir string

	// Screenshots enables page and open-menu screenshots.
	Screenshots bool

	// MarkdownFile, when set, receives a Markdown version of the report.
	MarkdownFile string

	// RemoteBrowser is the DevTools websocket URL of an already running
	// browser. Empty means a local headless Chrome is started.
	RemoteBrowser string

	// ChromePath overrides the Chrome executable of a local browser.
	ChromePath string

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/mobileqa on Linux).
	DBDir string

	// SaveToDB stores the run in the history database.
	SaveToDB bool

	// FailOn makes the run exit non-zero when a non-advisory issue of this
	// severity or worse exists. Empty disables the gate.
	FailOn string

	// Verbose enables debug logging and verbose console output.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .mobileqa is searched in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// The catalog and base URL have no defaults; they come from the config
// file or the command line.
func NewConfig() *Config {
	return &Config{
		Viewport:          DefaultViewport,
		WaitUntil:         browser.WaitNetworkIdle.String(),
		NavigationTimeout: DefaultNavigationTimeout,
		PageTimeout:       DefaultPageTimeout,
		SettleDelay:       DefaultSettleDelay,
		MenuOpenWait:      DefaultMenuOpenWait,
		MenuCloseWait:     DefaultMenuCloseWait,
		OutputDir:         DefaultOutputDir,
		Screenshots:       true,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for mobileqa.
// On Linux: ~/.local/share/mobileqa
// On macOS: ~/Library/Application Support/mobileqa
// On Windows: %LOCALAPPDATA%\mobileqa
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mobileqa.
// On Linux: ~/.config/mobileqa
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapping one of the sentinel errors
// in errors.go.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if err := validateHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBaseURL, err)
	}

	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	seen := make(map[string]struct{}, len(c.Pages))
	for _, p := range c.Pages {
		if !model.ValidName(p.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidPageName, p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicatePageName, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 || c.Viewport.Scale <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidViewport, c.Viewport)
	}

	if _, err := browser.ParseWaitUntil(c.WaitUntil); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidWaitUntil, c.WaitUntil)
	}

	// Navigation and page timeouts must be positive; zero would fail every page.
	if c.NavigationTimeout <= 0 || c.PageTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SettleDelay < 0 || c.MenuOpenWait < 0 || c.MenuCloseWait < 0 {
		return ErrInvalidDelay
	}

	for _, name := range c.DisabledChecks {
		if name == model.LoadCheckName {
			return fmt.Errorf("%w: %s cannot be disabled", ErrUnknownCheck, name)
		}
		if !check.IsBuiltin(name) {
			return fmt.Errorf("%w: %q", ErrUnknownCheck, name)
		}
	}

	if c.FailOn != "" {
		if _, err := model.ParseSeverity(c.FailOn); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidFailOn, c.FailOn)
		}
	}

	if c.RemoteBrowser != "" {
		u, err := url.Parse(c.RemoteBrowser)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return fmt.Errorf("%w: %s", ErrInvalidRemoteBrowser, c.RemoteBrowser)
		}
	}

	return nil
}

// NavigationWait returns the parsed WaitUntil. Invalid values, which
// Validate rejects, fall back to waiting for network idle.
func (c *Config) NavigationWait() browser.WaitUntil {
	w, err := browser.ParseWaitUntil(c.WaitUntil)
	if err != nil {
		return browser.WaitNetworkIdle
	}
	return w
}

// MenuOptions returns the menu probe options for this configuration.
func (c *Config) MenuOptions() menu.Options {
	opts := menu.DefaultOptions()
	opts.OpenWait = c.MenuOpenWait
	opts.CloseWait = c.MenuCloseWait
	return opts
}

// Registry returns the check registry with thresholds applied and disabled
// checks removed.
func (c *Config) Registry() *check.Registry {
	return check.NewRegistry(c.Thresholds).Without(c.DisabledChecks...)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
