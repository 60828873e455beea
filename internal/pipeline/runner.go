package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/check"
	"github.com/nao1215/mobileqa/internal/menu"
	"github.com/nao1215/mobileqa/internal/model"
)

// cancelledDescription is the load failure recorded for pages interrupted
// by the caller.
const cancelledDescription = "run cancelled"

// PageRunner evaluates a single page on an existing session.
type PageRunner struct {
	baseURL           string
	registry          *check.Registry
	menuOptions       menu.Options
	screenshotDir     string
	navigationTimeout time.Duration
	waitUntil         browser.WaitUntil
	pageTimeout       time.Duration
	settleDelay       time.Duration
	logger            *slog.Logger
}

// RunnerOption configures a PageRunner.
type RunnerOption func(*PageRunner)

// WithRegistry sets the checks to run. Default is every built-in check with
// default thresholds.
func WithRegistry(r *check.Registry) RunnerOption {
	return func(p *PageRunner) {
		p.registry = r
	}
}

// WithMenuOptions overrides the menu probe options.
func WithMenuOptions(opts menu.Options) RunnerOption {
	return func(p *PageRunner) {
		p.menuOptions = opts
	}
}

// WithScreenshotDir enables screenshots, written into dir.
func WithScreenshotDir(dir string) RunnerOption {
	return func(p *PageRunner) {
		p.screenshotDir = dir
	}
}

// WithNavigationTimeout bounds navigation.
func WithNavigationTimeout(d time.Duration) RunnerOption {
	return func(p *PageRunner) {
		if d > 0 {
			p.navigationTimeout = d
		}
	}
}

// WithWaitUntil sets the navigation completion signal. Default is
// browser.WaitNetworkIdle.
func WithWaitUntil(w browser.WaitUntil) RunnerOption {
	return func(p *PageRunner) {
		p.waitUntil = w
	}
}

// WithPageTimeout bounds the work after navigation.
func WithPageTimeout(d time.Duration) RunnerOption {
	return func(p *PageRunner) {
		if d > 0 {
			p.pageTimeout = d
		}
	}
}

// WithSettleDelay sets the wait after load. Zero disables it.
func WithSettleDelay(d time.Duration) RunnerOption {
	return func(p *PageRunner) {
		p.settleDelay = max(d, 0)
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(p *PageRunner) {
		p.logger = logger
	}
}

// NewPageRunner creates a PageRunner for pages under baseURL.
func NewPageRunner(baseURL string, opts ...RunnerOption) *PageRunner {
	r := &PageRunner{
		baseURL:           baseURL,
		menuOptions:       menu.DefaultOptions(),
		navigationTimeout: browser.DefaultNavigationTimeout,
		waitUntil:         browser.WaitNetworkIdle,
		pageTimeout:       DefaultPageTimeout,
		settleDelay:       DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = check.NewRegistry(check.DefaultThresholds())
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// loadPipeline returns the navigation stage.
func (r *PageRunner) loadPipeline() *Pipeline {
	p := New(WithLogger(r.logger))
	p.AddStep(NewNavigateStep(r.navigationTimeout, r.waitUntil, r.logger))
	return p
}

// inspectPipeline returns the stages that run on a loaded page.
func (r *PageRunner) inspectPipeline() *Pipeline {
	p := New(WithLogger(r.logger))
	p.AddStep(NewSettleStep(r.settleDelay))
	if r.screenshotDir != "" {
		p.AddStep(NewScreenshotStep(r.screenshotDir, r.logger))
	}
	p.AddSteps(
		NewMenuStep(r.menuOptions, r.screenshotDir, r.logger),
		NewSnapshotStep(r.logger),
		NewChecksStep(r.registry),
	)
	return p
}

// Run evaluates spec on session. It never fails: a page that cannot be
// evaluated, including one interrupted by ctx, yields a load failure.
func (r *PageRunner) Run(ctx context.Context, spec model.PageSpec, session browser.Session) model.PageResult {
	start := time.Now()
	run := &PageRun{
		Spec:    spec,
		URL:     spec.URL(r.baseURL),
		Session: session,
	}

	result := r.evaluate(ctx, run)
	result.Screenshots = run.Screenshots
	result.DurationMS = time.Since(start).Milliseconds()

	r.logger.Info("page evaluated",
		"page", spec.Name,
		"url", run.URL,
		"loaded", result.Loaded,
		"issues", len(result.Issues()),
		"steps", run.Performed,
		"duration_ms", result.DurationMS,
	)
	return result
}

func (r *PageRunner) evaluate(ctx context.Context, run *PageRun) model.PageResult {
	if err := r.loadPipeline().Execute(ctx, run); err != nil {
		return r.loadFailure(ctx, run, err)
	}

	inspect := r.inspectPipeline()
	r.logger.Debug("inspecting page", "page", run.Spec.Name, "steps", inspect.StepNames())

	pageCtx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()
	if err := inspect.Execute(pageCtx, run); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("page did not finish within %s", r.pageTimeout)
		}
		return r.loadFailure(ctx, run, err)
	}

	result := model.NewLoadedPage(run.Spec, run.URL, run.StatusCode)
	for _, c := range run.Checks {
		result.AddCheck(c)
	}
	return result
}

// loadFailure converts err into a page that could not be evaluated.
func (r *PageRunner) loadFailure(ctx context.Context, run *PageRun, err error) model.PageResult {
	description := cancelledDescription
	if ctx.Err() == nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			description = loadErr.Description()
		} else {
			description = (&LoadError{StatusCode: run.StatusCode, Err: err}).Description()
		}
	}
	return model.NewLoadFailure(run.Spec, run.URL, run.StatusCode, description)
}
