package model

import (
	"encoding/json"
	"fmt"
)

// LoadCheckName is the name of the implicit first check of every page.
// It records whether navigation succeeded with HTTP 200, and it owns the
// CRITICAL issue of a page that failed to load.
const LoadCheckName = "page_loads"

// Evidence is a small, bounded payload attached to an issue to help a human
// reader locate the problem. The harness never interprets it.
type Evidence struct {
	// Count is the number of offending elements found (before sampling).
	Count int `json:"count"`

	// Samples holds the first few offending elements.
	Samples []Sample `json:"samples,omitempty"`

	// Measurements holds page-level numbers such as scroll_width or viewport_width.
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

// Sample describes one offending element. Only the fields relevant to the
// check that produced it are set.
type Sample struct {
	Tag      string  `json:"tag,omitempty"`
	Text     string  `json:"text,omitempty"`
	Src      string  `json:"src,omitempty"`
	Type     string  `json:"type,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Gap      float64 `json:"gap,omitempty"`
	Index    int     `json:"index,omitempty"`
	Children int     `json:"children,omitempty"`
}

// Issue is a problem found on a page. Issues are created by checks and are
// not modified afterwards.
type Issue struct {
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Evidence    *Evidence `json:"evidence,omitempty"`
}

// NewIssue creates an Issue without evidence.
func NewIssue(severity Severity, description string) *Issue {
	return &Issue{Severity: severity, Description: description}
}

// CheckResult is the outcome of one check on one page.
// Issue is set if and only if Passed is false.
type CheckResult struct {
	// Name is the check identifier, e.g. "tap_targets".
	Name string `json:"name"`

	// Passed is true when the check's pass condition held.
	Passed bool `json:"passed"`

	// Advisory marks checks whose failures are reported but never gate a run.
	Advisory bool `json:"advisory,omitempty"`

	// Issue describes the failure. Nil when Passed is true.
	Issue *Issue `json:"issue,omitempty"`
}

// NewPassed returns a passing CheckResult.
func NewPassed(name string) CheckResult {
	return CheckResult{Name: name, Passed: true}
}

// NewFailed returns a failing CheckResult that owns issue.
func NewFailed(name string, issue *Issue) CheckResult {
	return CheckResult{Name: name, Passed: false, Issue: issue}
}

// Validate checks the Issue-iff-failed invariant and the issue severity.
func (c CheckResult) Validate() error {
	if c.Passed && c.Issue != nil {
		return fmt.Errorf("check %s: %w", c.Name, ErrUnexpectedIssue)
	}
	if !c.Passed {
		if c.Issue == nil {
			return fmt.Errorf("check %s: %w", c.Name, ErrMissingIssue)
		}
		if !c.Issue.Severity.Valid() {
			return fmt.Errorf("check %s: %w", c.Name, ErrUnknownSeverity)
		}
	}
	return nil
}

// PageResult is everything learned about one page during a run.
// It is built by the page runner, which only appends checks, and is treated
// as immutable once returned.
type PageResult struct {
	// Page is the catalog entry that was tested.
	Page PageSpec `json:"page"`

	// URL is the absolute URL that was navigated to.
	URL string `json:"url"`

	// Loaded is true when navigation succeeded with HTTP 200.
	Loaded bool `json:"loaded"`

	// StatusCode is the HTTP status of the main document, 0 if none was received.
	StatusCode int `json:"status_code,omitempty"`

	// Checks holds one result per executed check, starting with page_loads.
	Checks []CheckResult `json:"checks"`

	// Screenshots lists the image files written for this page.
	Screenshots []string `json:"screenshots,omitempty"`

	// DurationMS is the wall-clock time spent on the page in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// NewLoadFailure builds the result of a page that could not be evaluated.
// It has exactly one check, page_loads, carrying one CRITICAL issue.
func NewLoadFailure(spec PageSpec, url string, statusCode int, description string) PageResult {
	return PageResult{
		Page:       spec,
		URL:        url,
		Loaded:     false,
		StatusCode: statusCode,
		Checks: []CheckResult{
			NewFailed(LoadCheckName, NewIssue(SeverityCritical, description)),
		},
	}
}

// NewLoadedPage starts the result of a page that loaded successfully.
// Further checks are appended with AddCheck.
func NewLoadedPage(spec PageSpec, url string, statusCode int) PageResult {
	return PageResult{
		Page:       spec,
		URL:        url,
		Loaded:     true,
		StatusCode: statusCode,
		Checks:     []CheckResult{NewPassed(LoadCheckName)},
	}
}

// AddCheck appends a check result.
func (p *PageResult) AddCheck(c CheckResult) {
	p.Checks = append(p.Checks, c)
}

// Issues returns the issues of all failed checks, in check order.
// The list is derived on every call and never stored separately.
func (p PageResult) Issues() []Issue {
	issues := make([]Issue, 0)
	for _, c := range p.Checks {
		if !c.Passed && c.Issue != nil {
			issues = append(issues, *c.Issue)
		}
	}
	return issues
}

// HasIssues reports whether any check failed.
func (p PageResult) HasIssues() bool {
	for _, c := range p.Checks {
		if !c.Passed {
			return true
		}
	}
	return false
}

// Check returns the result of the named check.
func (p PageResult) Check(name string) (CheckResult, bool) {
	for _, c := range p.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Validate checks the structural invariants of a page result.
// A page that did not load must hold exactly one failed page_loads check
// with a CRITICAL issue.
func (p PageResult) Validate() error {
	for _, c := range p.Checks {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("page %s: %w", p.Page.Name, err)
		}
	}
	if p.Loaded {
		return nil
	}
	if len(p.Checks) != 1 || p.Checks[0].Name != LoadCheckName || p.Checks[0].Passed ||
		p.Checks[0].Issue.Severity != SeverityCritical {
		return fmt.Errorf("page %s: unloaded page must have a single critical %s check", p.Page.Name, LoadCheckName)
	}
	return nil
}

// MarshalJSON adds the derived issues list to the encoded page.
// The list is ignored when decoding; Issues recomputes it from the checks.
func (p PageResult) MarshalJSON() ([]byte, error) {
	type plain PageResult
	return json.Marshal(struct {
		plain
		Issues []Issue `json:"issues"`
	}{plain: plain(p), Issues: p.Issues()})
}
