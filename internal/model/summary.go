package model

// RunSummary is the run-level rollup of all page results.
// It is only ever produced by Summarize and is never patched afterwards.
type RunSummary struct {
	// TotalPages is the number of pages in the run, loaded or not.
	TotalPages int `json:"total_pages"`

	// PagesWithIssues is the number of pages with at least one issue.
	PagesWithIssues int `json:"pages_with_issues"`

	// TotalIssues is the number of issues across all pages.
	TotalIssues int `json:"total_issues"`

	// CountsBySeverity tallies issues per severity. All four levels are present.
	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
}

// Summarize folds page results into a RunSummary.
// The summary is a pure function of pages: calling it twice on the same
// input yields equal summaries.
func Summarize(pages []PageResult) RunSummary {
	summary := RunSummary{
		TotalPages:       len(pages),
		CountsBySeverity: make(map[Severity]int, len(Severities())),
	}
	for _, s := range Severities() {
		summary.CountsBySeverity[s] = 0
	}

	for _, page := range pages {
		issues := page.Issues()
		if len(issues) > 0 {
			summary.PagesWithIssues++
		}
		summary.TotalIssues += len(issues)
		for _, issue := range issues {
			summary.CountsBySeverity[issue.Severity]++
		}
	}

	return summary
}

// Count returns the number of issues at the given severity.
func (s RunSummary) Count(severity Severity) int {
	return s.CountsBySeverity[severity]
}
