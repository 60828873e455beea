package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/mobileqa/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing in pull
// requests and tickets.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeIssues(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Mobile QA Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Base URL", report.BaseURL},
			{"Viewport", report.Viewport.String()},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Pages Tested", strconv.Itoa(report.Summary.TotalPages)},
		},
	})
	md.PlainText("")
}

// severityEmoji returns the marker used next to severity names.
func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	default:
		return "🔵"
	}
}

// severityTitle returns "Critical" for CRITICAL.
func severityTitle(s model.Severity) string {
	return cases.Title(language.English).String(strings.ToLower(s.String()))
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Severities())+1)
	for _, s := range model.Severities() {
		rows = append(rows, []string{severityEmoji(s) + " " + severityTitle(s), strconv.Itoa(report.Summary.Count(s))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(report.Summary.TotalIssues) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Summary.TotalIssues > 0 {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)
	for _, s := range model.Severities() {
		if n := report.Summary.Count(s); n > 0 {
			chart.LabelAndIntValue(severityTitle(s), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	s := report.Summary
	switch {
	case s.Count(model.SeverityCritical) > 0:
		md.Cautionf("%d critical issue(s): pages are broken or unusable on mobile.", s.Count(model.SeverityCritical))
	case s.Count(model.SeverityHigh) > 0:
		md.Warningf("%d high severity issue(s) should be fixed before release.", s.Count(model.SeverityHigh))
	case s.Count(model.SeverityMedium) > 0:
		md.Importantf("%d medium severity issue(s) affect mobile usability.", s.Count(model.SeverityMedium))
	case s.TotalIssues > 0:
		md.Note("Only low severity issues found.")
	default:
		md.Tip("No mobile issues detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		status := "✅ Loaded"
		if !p.Loaded {
			status = "❌ Failed"
		}
		code := "-"
		if p.StatusCode != 0 {
			code = strconv.Itoa(p.StatusCode)
		}
		rows[i] = []string{p.Page.Name, p.Page.Path, code, status, strconv.Itoa(len(p.Issues()))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Path", "HTTP", "Status", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Issues")
	md.PlainText("")

	if report.Summary.TotalIssues == 0 {
		md.PlainText("No issues found.")
		md.PlainText("")
		return
	}

	for _, s := range model.Severities() {
		issues := report.IssuesBySeverity(s)
		if len(issues) == 0 {
			continue
		}
		md.H3(severityEmoji(s) + " " + severityTitle(s))
		md.PlainText("")

		rows := make([][]string, len(issues))
		for i, pi := range issues {
			rows[i] = []string{pi.Page, "`" + pi.Check + "`", truncateString(pi.Issue.Description, 100)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Page", "Check", "Description"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by mobileqa*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
