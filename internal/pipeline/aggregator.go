package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/model"
)

// ProgressFunc is called after each page with its position in the catalog
// (starting at 1) and its result.
type ProgressFunc func(index, total int, result model.PageResult)

// Aggregator runs the whole catalog on one session.
type Aggregator struct {
	runner   *PageRunner
	progress ProgressFunc
	logger   *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithProgress sets a callback invoked after each page.
func WithProgress(fn ProgressFunc) AggregatorOption {
	return func(a *Aggregator) {
		a.progress = fn
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator around runner.
func NewAggregator(runner *PageRunner, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{runner: runner}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// RunAll evaluates specs in order, one page at a time, and returns one
// result per spec together with their summary. Page failures never stop the
// run; after cancellation the remaining pages are recorded as cancelled.
func (a *Aggregator) RunAll(ctx context.Context, specs []model.PageSpec, session browser.Session) (model.RunSummary, []model.PageResult) {
	a.logger.Info("starting run", "pages", len(specs))
	start := time.Now()

	results := make([]model.PageResult, 0, len(specs))
	for i, spec := range specs {
		result := a.runner.Run(ctx, spec, session)
		results = append(results, result)
		if a.progress != nil {
			a.progress(i+1, len(specs), result)
		}
	}

	summary := model.Summarize(results)
	a.logger.Info("run complete",
		"pages", summary.TotalPages,
		"pages_with_issues", summary.PagesWithIssues,
		"issues", summary.TotalIssues,
		"elapsed", time.Since(start),
	)
	return summary, results
}

// RunWithSession opens a session, passes it to fn and closes it exactly once
// when fn returns or panics.
func RunWithSession(ctx context.Context, open browser.OpenFunc, fn func(ctx context.Context, session browser.Session) error) (err error) {
	if open == nil {
		return ErrNoOpener
	}
	session, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close browser session: %w", closeErr))
		}
	}()
	return fn(ctx, session)
}
