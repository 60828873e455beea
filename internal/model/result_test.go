package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheckResultValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		check   CheckResult
		wantErr error
	}{
		{"passed without issue", NewPassed("tap_targets"), nil},
		{"failed with issue", NewFailed("tap_targets", NewIssue(SeverityMedium, "small")), nil},
		{"passed with issue", CheckResult{Name: "x", Passed: true, Issue: NewIssue(SeverityLow, "x")}, ErrUnexpectedIssue},
		{"failed without issue", CheckResult{Name: "x"}, ErrMissingIssue},
		{"failed with invalid severity", NewFailed("x", NewIssue(Severity(0), "x")), ErrUnknownSeverity},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.check.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewLoadFailure(t *testing.T) {
	t.Parallel()

	spec := PageSpec{Name: "about", Path: "/about.html"}
	page := NewLoadFailure(spec, "https://example.com/about.html", 404, "Page failed to load: HTTP 404")

	if page.Loaded {
		t.Error("expected Loaded to be false")
	}
	if len(page.Checks) != 1 {
		t.Fatalf("expected exactly one check, got %d", len(page.Checks))
	}
	if page.Checks[0].Name != LoadCheckName {
		t.Errorf("expected %s check, got %s", LoadCheckName, page.Checks[0].Name)
	}

	issues := page.Issues()
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %d", len(issues))
	}
	if issues[0].Severity != SeverityCritical {
		t.Errorf("expected CRITICAL, got %v", issues[0].Severity)
	}
	if err := page.Validate(); err != nil {
		t.Errorf("load failure should validate: %v", err)
	}
}

func TestPageResultValidate(t *testing.T) {
	t.Parallel()

	t.Run("unloaded page with extra checks is rejected", func(t *testing.T) {
		t.Parallel()
		page := NewLoadFailure(PageSpec{Name: "a", Path: "/"}, "u", 500, "boom")
		page.AddCheck(NewPassed("text_readable"))
		if err := page.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unloaded page with non-critical issue is rejected", func(t *testing.T) {
		t.Parallel()
		page := PageResult{
			Page:   PageSpec{Name: "a", Path: "/"},
			Checks: []CheckResult{NewFailed(LoadCheckName, NewIssue(SeverityHigh, "x"))},
		}
		if err := page.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("loaded page with failed checks is valid", func(t *testing.T) {
		t.Parallel()
		page := NewLoadedPage(PageSpec{Name: "a", Path: "/"}, "u", 200)
		page.AddCheck(NewFailed("text_readable", NewIssue(SeverityMedium, "small text")))
		if err := page.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestPageResultIssues(t *testing.T) {
	t.Parallel()

	page := NewLoadedPage(PageSpec{Name: "home", Path: "/"}, "https://example.com/", 200)
	page.AddCheck(NewPassed("no_horizontal_overflow"))
	page.AddCheck(NewFailed("tap_targets", NewIssue(SeverityMedium, "buttons too small")))
	page.AddCheck(NewFailed("images_fit_viewport", NewIssue(SeverityHigh, "wide image")))

	if !page.HasIssues() {
		t.Error("expected HasIssues to be true")
	}

	got := page.Issues()
	want := []Issue{
		{Severity: SeverityMedium, Description: "buttons too small"},
		{Severity: SeverityHigh, Description: "wide image"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Issues() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := page.Check("tap_targets"); !ok {
		t.Error("expected to find tap_targets")
	}
	if _, ok := page.Check("missing"); ok {
		t.Error("did not expect to find missing check")
	}
}

func TestPageResultJSONRoundTrip(t *testing.T) {
	t.Parallel()

	page := NewLoadedPage(PageSpec{Name: "home", Path: "/"}, "https://example.com/", 200)
	page.AddCheck(NewFailed("tap_targets", &Issue{
		Severity:    SeverityMedium,
		Description: "2 tap targets smaller than 44x44px",
		Evidence: &Evidence{
			Count: 2,
			Samples: []Sample{
				{Tag: "button", Text: "Go", Width: 43, Height: 50},
				{Tag: "a", Text: "More", Width: 30, Height: 20},
			},
		},
	}))
	page.AddCheck(CheckResult{
		Name:     "touch_spacing",
		Advisory: true,
		Issue: &Issue{
			Severity:    SeverityLow,
			Description: "crowded",
			Evidence:    &Evidence{Count: 3, Measurements: map[string]float64{"min_gap": 2.5}},
		},
	})
	page.Screenshots = []string{"home-mobile.png"}
	page.DurationMS = 1234

	data, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"issues":[`) {
		t.Errorf("expected derived issues in JSON, got %s", data)
	}

	var decoded PageResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(page, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(page.Issues(), decoded.Issues()); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}
