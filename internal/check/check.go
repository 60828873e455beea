package check

import (
	"fmt"

	"github.com/nao1215/mobileqa/internal/model"
)

// Check is one heuristic rule evaluated against a rendered page.
type Check interface {
	// Name returns the check identifier used in reports, e.g. "tap_targets".
	Name() string

	// Severity returns the severity of the issue raised when the check fails.
	Severity() model.Severity

	// Advisory reports whether failures are informational only and must
	// never gate a run.
	Advisory() bool

	// Evaluate inspects the page state. A failed heuristic is a normal
	// Outcome; an error means the check itself could not run.
	Evaluate(state *PageState) (Outcome, error)
}

// Outcome is the verdict of a check.
type Outcome struct {
	// Passed is true when the pass condition held.
	Passed bool

	// Description explains the failure. Ignored when Passed is true.
	Description string

	// Evidence is a bounded sample of what was found.
	Evidence *model.Evidence
}

// Pass returns a passing outcome.
func Pass() Outcome {
	return Outcome{Passed: true}
}

// Fail returns a failing outcome.
func Fail(description string, evidence *model.Evidence) Outcome {
	return Outcome{Passed: false, Description: description, Evidence: evidence}
}

// Run evaluates c and converts the outcome into a CheckResult.
// Errors and panics are contained: they become a failed result with a
// MEDIUM issue describing the fault.
func Run(c Check, state *PageState) (result model.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = executionFailure(c, fmt.Errorf("panic: %v", r))
		}
	}()

	outcome, err := c.Evaluate(state)
	if err != nil {
		return executionFailure(c, err)
	}

	if outcome.Passed {
		result = model.NewPassed(c.Name())
		result.Advisory = c.Advisory()
		return result
	}

	description := outcome.Description
	if description == "" {
		description = fmt.Sprintf("Check %s failed", c.Name())
	}
	result = model.NewFailed(c.Name(), &model.Issue{
		Severity:    c.Severity(),
		Description: description,
		Evidence:    outcome.Evidence,
	})
	result.Advisory = c.Advisory()
	return result
}

func executionFailure(c Check, err error) model.CheckResult {
	result := model.NewFailed(c.Name(), model.NewIssue(
		model.SeverityMedium,
		fmt.Sprintf("Check %s failed to execute: %v", c.Name(), err),
	))
	result.Advisory = c.Advisory()
	return result
}

// base carries the static attributes shared by the built-in checks.
type base struct {
	name     string
	severity model.Severity
	advisory bool
}

// Name returns the check identifier.
func (b base) Name() string { return b.name }

// Severity returns the severity raised on failure.
func (b base) Severity() model.Severity { return b.severity }

// Advisory reports whether failures are informational only.
func (b base) Advisory() bool { return b.advisory }
