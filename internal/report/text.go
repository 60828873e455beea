package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nao1215/mobileqa/internal/model"
)

// bannerWidth is the width of the separator lines.
const bannerWidth = 40

// TextWriter outputs the console summary: totals per severity followed by
// the issue listings, most severe first.
type TextWriter struct {
	baseWriter

	// color enables ANSI styling of severity labels.
	color bool

	// verbose adds LOW issues and per-page status lines.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithColor enables colored output. Callers enable it for terminals only.
func WithColor(color bool) TextWriterOption {
	return func(w *TextWriter) {
		w.color = color
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *TextWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeSummary(&sb, report)
	if w.verbose {
		w.writePages(&sb, report)
	}
	w.writeIssues(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	rule := strings.Repeat("=", bannerWidth)
	s := report.Summary

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(w.style("MOBILE QA TEST SUMMARY", lipgloss.Color("39")) + "\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(sb, "Base URL: %s\n", report.BaseURL)
	fmt.Fprintf(sb, "Viewport: %s\n", report.Viewport)
	fmt.Fprintf(sb, "Total Pages Tested: %d\n", s.TotalPages)
	fmt.Fprintf(sb, "Pages with Issues: %d\n", s.PagesWithIssues)
	fmt.Fprintf(sb, "Total Issues Found: %d\n", s.TotalIssues)
	for _, sev := range model.Severities() {
		fmt.Fprintf(sb, "  - %s: %d\n", w.severity(sev), s.Count(sev))
	}
	sb.WriteString(rule + "\n\n")
}

func (w *TextWriter) writePages(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("PAGES:\n")
	for _, p := range report.Pages {
		status := "ok"
		if !p.Loaded {
			status = "FAILED"
		}
		fmt.Fprintf(sb, "  %-24s %-6s %d issue(s)  %s\n", p.Page.Name, status, len(p.Issues()), p.URL)
	}
	sb.WriteString("\n")
}

// listingTitles are the section titles of the issue listings.
var listingTitles = map[model.Severity]string{
	model.SeverityCritical: "CRITICAL ISSUES:",
	model.SeverityHigh:     "HIGH PRIORITY ISSUES:",
	model.SeverityMedium:   "MEDIUM PRIORITY ISSUES:",
	model.SeverityLow:      "LOW PRIORITY ISSUES:",
}

func (w *TextWriter) writeIssues(sb *strings.Builder, report *model.RunReport) {
	for _, sev := range model.Severities() {
		if sev == model.SeverityLow && !w.verbose {
			continue
		}
		issues := report.IssuesBySeverity(sev)
		if len(issues) == 0 {
			continue
		}
		sb.WriteString(w.style(listingTitles[sev], severityColor(sev)) + "\n")
		for _, pi := range issues {
			fmt.Fprintf(sb, "  [%s] %s\n", pi.Page, pi.Issue.Description)
		}
		sb.WriteString("\n")
	}
}

// severity returns the severity label, colored when enabled.
func (w *TextWriter) severity(s model.Severity) string {
	return w.style(s.String(), severityColor(s))
}

func (w *TextWriter) style(text string, color lipgloss.Color) string {
	if !w.color {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(text)
}

func severityColor(s model.Severity) lipgloss.Color {
	switch s {
	case model.SeverityCritical:
		return lipgloss.Color("196")
	case model.SeverityHigh:
		return lipgloss.Color("208")
	case model.SeverityMedium:
		return lipgloss.Color("220")
	default:
		return lipgloss.Color("33")
	}
}
