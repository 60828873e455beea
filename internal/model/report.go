package model

import (
	"fmt"
	"time"
)

// Viewport describes the emulated device screen.
type Viewport struct {
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	Scale  float64 `json:"scale" yaml:"scale"`
}

// String returns the viewport as "375x812@2x".
func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d@%gx", v.Width, v.Height, v.Scale)
}

// RunReport is the document persisted at the end of a run.
// Its top level carries the summary and the full page list; everything else
// is run metadata.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Version is the mobileqa version that produced the report.
	Version string `json:"version,omitempty"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// BaseURL is the site root every page path was joined to.
	BaseURL string `json:"base_url"`

	// Viewport is the emulated device screen.
	Viewport Viewport `json:"viewport"`

	// Summary is derived from Pages by Summarize.
	Summary RunSummary `json:"summary"`

	// Pages holds one result per requested page, in catalog order.
	Pages []PageResult `json:"pages"`
}

// NewRunReport assembles a report and computes its summary from pages.
func NewRunReport(runID, baseURL string, viewport Viewport, startedAt, finishedAt time.Time, pages []PageResult) *RunReport {
	return &RunReport{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		BaseURL:    baseURL,
		Viewport:   viewport,
		Summary:    Summarize(pages),
		Pages:      pages,
	}
}

// PageIssue is an issue paired with the name of the page it was found on.
type PageIssue struct {
	Page  string
	Check string
	Issue Issue
}

// IssuesBySeverity returns every issue of the given severity across all pages,
// in page order.
func (r *RunReport) IssuesBySeverity(severity Severity) []PageIssue {
	var result []PageIssue
	for _, page := range r.Pages {
		for _, c := range page.Checks {
			if c.Passed || c.Issue == nil || c.Issue.Severity != severity {
				continue
			}
			result = append(result, PageIssue{Page: page.Page.Name, Check: c.Name, Issue: *c.Issue})
		}
	}
	return result
}

// BlockingIssues counts non-advisory issues at or above threshold.
func (r *RunReport) BlockingIssues(threshold Severity) int {
	count := 0
	for _, page := range r.Pages {
		for _, c := range page.Checks {
			if c.Passed || c.Advisory || c.Issue == nil {
				continue
			}
			if c.Issue.Severity >= threshold {
				count++
			}
		}
	}
	return count
}

// Duration returns the wall-clock length of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks every page and that the stored summary matches the pages.
func (r *RunReport) Validate() error {
	for _, page := range r.Pages {
		if err := page.Validate(); err != nil {
			return err
		}
	}
	want := Summarize(r.Pages)
	if want.TotalPages != r.Summary.TotalPages || want.TotalIssues != r.Summary.TotalIssues ||
		want.PagesWithIssues != r.Summary.PagesWithIssues {
		return fmt.Errorf("run %s: summary does not match pages", r.RunID)
	}
	for _, s := range Severities() {
		if want.Count(s) != r.Summary.Count(s) {
			return fmt.Errorf("run %s: %s count does not match pages", r.RunID, s)
		}
	}
	return nil
}
