package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/check"
	"github.com/nao1215/mobileqa/internal/menu"
	"github.com/nao1215/mobileqa/internal/model"
)

// PageRun is the working record of one page while its steps execute.
// Steps read what earlier steps left and add their own findings.
type PageRun struct {
	// Spec is the catalog entry under test.
	Spec model.PageSpec

	// URL is the absolute address of the page.
	URL string

	// Session is the browser tab shared by every page of the run.
	Session browser.Session

	// StatusCode is set by NavigateStep.
	StatusCode int

	// Menu is set by MenuStep.
	Menu *menu.Result

	// Snapshot and SnapshotErr are set by SnapshotStep.
	Snapshot    *check.Snapshot
	SnapshotErr error

	// Checks holds the results appended by ChecksStep.
	Checks []model.CheckResult

	// Screenshots lists the files written for the page.
	Screenshots []string

	// Performed lists the steps that completed, in order.
	Performed []string
}

// Step is one stage of page processing.
type Step interface {
	// Do executes the step. Findings are recorded on run; a returned error
	// stops the pipeline and means the page could not be evaluated.
	Do(ctx context.Context, run *PageRun) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence and stops at the first error.
// The context is checked before each step; steps handle their own timeouts.
func (p *Pipeline) Execute(ctx context.Context, run *PageRun) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"page", run.Spec.Name,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"page", run.Spec.Name,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"page", run.Spec.Name,
				"error", err,
			)
			return err
		}
		run.Performed = append(run.Performed, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
