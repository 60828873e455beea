package model

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// randomPages builds a deterministic mix of loaded and unloaded pages.
func randomPages(seed int64, n int) []PageResult {
	rng := rand.New(rand.NewSource(seed))
	pages := make([]PageResult, 0, n)
	for i := 0; i < n; i++ {
		spec := PageSpec{Name: fmt.Sprintf("page-%d", i), Path: fmt.Sprintf("/p%d.html", i)}
		if rng.Intn(5) == 0 {
			pages = append(pages, NewLoadFailure(spec, spec.Path, 404, "Page failed to load: HTTP 404"))
			continue
		}
		page := NewLoadedPage(spec, spec.Path, 200)
		for c := 0; c < 10; c++ {
			name := fmt.Sprintf("check_%d", c)
			if rng.Intn(3) == 0 {
				sev := Severity(rng.Intn(4) + 1)
				page.AddCheck(NewFailed(name, NewIssue(sev, "failed")))
				continue
			}
			page.AddCheck(NewPassed(name))
		}
		pages = append(pages, page)
	}
	return pages
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty run has all severities at zero", func(t *testing.T) {
		t.Parallel()
		got := Summarize(nil)
		want := RunSummary{
			CountsBySeverity: map[Severity]int{
				SeverityCritical: 0, SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0,
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("counts pages and issues", func(t *testing.T) {
		t.Parallel()
		clean := NewLoadedPage(PageSpec{Name: "a", Path: "/a"}, "/a", 200)
		clean.AddCheck(NewPassed("text_readable"))

		broken := NewLoadedPage(PageSpec{Name: "b", Path: "/b"}, "/b", 200)
		broken.AddCheck(NewFailed("tap_targets", NewIssue(SeverityMedium, "x")))
		broken.AddCheck(NewFailed("hero_height", NewIssue(SeverityLow, "x")))

		missing := NewLoadFailure(PageSpec{Name: "c", Path: "/c"}, "/c", 404, "Page failed to load: HTTP 404")

		got := Summarize([]PageResult{clean, broken, missing})
		want := RunSummary{
			TotalPages:      3,
			PagesWithIssues: 2,
			TotalIssues:     3,
			CountsBySeverity: map[Severity]int{
				SeverityCritical: 1, SeverityHigh: 0, SeverityMedium: 1, SeverityLow: 1,
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestSummarizeProperties checks the summary against independent tallies
// over many generated runs.
func TestSummarizeProperties(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 50; seed++ {
		pages := randomPages(seed, int(seed%12))
		summary := Summarize(pages)

		total := 0
		bySeverity := map[Severity]int{}
		for _, p := range pages {
			total += len(p.Issues())
			for _, issue := range p.Issues() {
				bySeverity[issue.Severity]++
			}
			if !p.Loaded {
				if len(p.Issues()) != 1 || p.Issues()[0].Severity != SeverityCritical || len(p.Checks) != 1 {
					t.Fatalf("seed %d: unloaded page %s violates load-failure shape", seed, p.Page.Name)
				}
			}
		}

		if summary.TotalIssues != total {
			t.Errorf("seed %d: TotalIssues = %d, expected %d", seed, summary.TotalIssues, total)
		}
		for _, s := range Severities() {
			if summary.Count(s) != bySeverity[s] {
				t.Errorf("seed %d: %s = %d, expected %d", seed, s, summary.Count(s), bySeverity[s])
			}
		}
		if diff := cmp.Diff(summary, Summarize(pages)); diff != "" {
			t.Errorf("seed %d: Summarize is not deterministic:\n%s", seed, diff)
		}
	}
}

func TestRunReportJSONRoundTrip(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pages := randomPages(7, 6)
	report := NewRunReport("run-1", "https://example.com", Viewport{Width: 375, Height: 812, Scale: 2},
		started, started.Add(42*time.Second), pages)
	report.Version = "v1.0.0"

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(*report, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("decoded report should validate: %v", err)
	}
	if decoded.Duration() != 42*time.Second {
		t.Errorf("Duration() = %v", decoded.Duration())
	}
}

func TestRunReportValidateDetectsDrift(t *testing.T) {
	t.Parallel()

	report := NewRunReport("run-1", "https://example.com", Viewport{}, time.Now(), time.Now(), randomPages(3, 5))
	report.Summary.TotalIssues++
	if err := report.Validate(); err == nil {
		t.Error("expected error for summary drift")
	}
}

func TestBlockingIssues(t *testing.T) {
	t.Parallel()

	page := NewLoadedPage(PageSpec{Name: "a", Path: "/"}, "/", 200)
	page.AddCheck(NewFailed("no_horizontal_overflow", NewIssue(SeverityCritical, "x")))
	page.AddCheck(NewFailed("tap_targets", NewIssue(SeverityMedium, "x")))
	page.AddCheck(NewFailed("hero_height", NewIssue(SeverityLow, "x")))
	page.AddCheck(CheckResult{Name: "touch_spacing", Advisory: true, Issue: NewIssue(SeverityLow, "x")})

	report := NewRunReport("r", "/", Viewport{}, time.Now(), time.Now(), []PageResult{page})

	testCases := []struct {
		threshold Severity
		expected  int
	}{
		{SeverityCritical, 1},
		{SeverityHigh, 1},
		{SeverityMedium, 2},
		{SeverityLow, 3},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.threshold.String(), func(t *testing.T) {
			t.Parallel()
			if got := report.BlockingIssues(tc.threshold); got != tc.expected {
				t.Errorf("BlockingIssues(%s) = %d, expected %d", tc.threshold, got, tc.expected)
			}
		})
	}

	if got := len(report.IssuesBySeverity(SeverityLow)); got != 2 {
		t.Errorf("IssuesBySeverity(LOW) = %d, expected 2", got)
	}
}
