package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/check"
	"github.com/nao1215/mobileqa/internal/menu"
)

// Default page timings.
const (
	// DefaultSettleDelay lets animations and lazy content finish after load.
	DefaultSettleDelay = time.Second

	// DefaultPageTimeout bounds everything after navigation.
	DefaultPageTimeout = 30 * time.Second
)

// Screenshot file name suffixes.
const (
	pageShotSuffix = "-mobile.png"
	menuShotSuffix = "-mobile-menu-open.png"
)

// NavigateStep loads the page and waits for the configured completion
// signal. Anything but an HTTP 200 main document stops the pipeline with a
// LoadError.
type NavigateStep struct {
	timeout time.Duration
	wait    browser.WaitUntil
	logger  *slog.Logger
}

// NewNavigateStep creates a NavigateStep. A zero timeout uses
// browser.DefaultNavigationTimeout.
func NewNavigateStep(timeout time.Duration, wait browser.WaitUntil, logger *slog.Logger) *NavigateStep {
	if timeout <= 0 {
		timeout = browser.DefaultNavigationTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NavigateStep{timeout: timeout, wait: wait, logger: logger}
}

// Name returns the step name.
func (s *NavigateStep) Name() string {
	return "navigate"
}

// Do executes the navigation.
func (s *NavigateStep) Do(ctx context.Context, run *PageRun) error {
	resp, err := run.Session.Navigate(ctx, run.URL, browser.NavigateOptions{
		WaitUntil: s.wait,
		Timeout:   s.timeout,
	})
	if err != nil {
		return &LoadError{Err: err}
	}
	run.StatusCode = resp.StatusCode
	if resp.URL != "" && resp.URL != run.URL {
		s.logger.Info("page redirected", "page", run.Spec.Name, "from", run.URL, "to", resp.URL)
	}
	if resp.StatusCode != http.StatusOK {
		return &LoadError{StatusCode: resp.StatusCode, Err: ErrBadStatus}
	}
	return nil
}

// SettleStep waits a fixed delay after load.
type SettleStep struct {
	delay time.Duration
}

// NewSettleStep creates a SettleStep.
func NewSettleStep(delay time.Duration) *SettleStep {
	return &SettleStep{delay: delay}
}

// Name returns the step name.
func (s *SettleStep) Name() string {
	return "settle"
}

// Do waits for the delay or until ctx is done.
func (s *SettleStep) Do(ctx context.Context, _ *PageRun) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScreenshotStep captures the full page as <dir>/<name>-mobile.png.
// A failed capture is logged and does not affect the page result.
type ScreenshotStep struct {
	dir    string
	logger *slog.Logger
}

// NewScreenshotStep creates a ScreenshotStep writing into dir.
func NewScreenshotStep(dir string, logger *slog.Logger) *ScreenshotStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenshotStep{dir: dir, logger: logger}
}

// Name returns the step name.
func (s *ScreenshotStep) Name() string {
	return "screenshot"
}

// Do executes the capture.
func (s *ScreenshotStep) Do(ctx context.Context, run *PageRun) error {
	path := filepath.Join(s.dir, run.Spec.Name+pageShotSuffix)
	return capture(ctx, run, path, browser.ScreenshotOptions{FullPage: true}, s.logger)
}

// capture takes a screenshot and records it on run. Only context errors are
// returned.
func capture(ctx context.Context, run *PageRun, path string, opts browser.ScreenshotOptions, logger *slog.Logger) error {
	if err := run.Session.Screenshot(ctx, path, opts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("screenshot failed",
			"page", run.Spec.Name,
			"path", path,
			"error", err,
		)
		return nil
	}
	run.Screenshots = append(run.Screenshots, path)
	return nil
}

// MenuStep probes the mobile navigation menu. When a screenshot directory is
// set, the open menu is captured as <dir>/<name>-mobile-menu-open.png.
type MenuStep struct {
	opts   menu.Options
	dir    string
	logger *slog.Logger
}

// NewMenuStep creates a MenuStep. dir may be empty to skip the screenshot.
func NewMenuStep(opts menu.Options, dir string, logger *slog.Logger) *MenuStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuStep{opts: opts, dir: dir, logger: logger}
}

// Name returns the step name.
func (s *MenuStep) Name() string {
	return "menu_probe"
}

// Do executes the probe.
func (s *MenuStep) Do(ctx context.Context, run *PageRun) error {
	opts := s.opts
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	if s.dir != "" {
		path := filepath.Join(s.dir, run.Spec.Name+menuShotSuffix)
		opts.OnOpen = func(ctx context.Context) error {
			return capture(ctx, run, path, browser.ScreenshotOptions{}, s.logger)
		}
	}

	result, err := menu.Probe(ctx, run.Session, opts)
	if err != nil {
		return fmt.Errorf("menu probe: %w", err)
	}
	run.Menu = &result
	return nil
}

// SnapshotStep collects the page measurements used by the checks.
// Collection errors other than cancellation are kept on the run; every check
// that needs the snapshot then reports an execution error.
type SnapshotStep struct {
	logger *slog.Logger
}

// NewSnapshotStep creates a SnapshotStep.
func NewSnapshotStep(logger *slog.Logger) *SnapshotStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStep{logger: logger}
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot"
}

// Do executes the collection.
func (s *SnapshotStep) Do(ctx context.Context, run *PageRun) error {
	snap, err := check.Collect(ctx, run.Session)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		s.logger.Warn("snapshot failed", "page", run.Spec.Name, "error", err)
		run.SnapshotErr = err
		return nil
	}
	run.Snapshot = snap
	return nil
}

// ChecksStep evaluates the registered checks.
type ChecksStep struct {
	registry *check.Registry
}

// NewChecksStep creates a ChecksStep.
func NewChecksStep(registry *check.Registry) *ChecksStep {
	return &ChecksStep{registry: registry}
}

// Name returns the step name.
func (s *ChecksStep) Name() string {
	return "checks"
}

// Do runs every check against the collected state.
func (s *ChecksStep) Do(_ context.Context, run *PageRun) error {
	state := &check.PageState{
		URL:         run.URL,
		Snapshot:    run.Snapshot,
		SnapshotErr: run.SnapshotErr,
		Menu:        run.Menu,
	}
	run.Checks = append(run.Checks, s.registry.Run(state)...)
	return nil
}
