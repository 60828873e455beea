package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/mobileqa/internal/config"
	"github.com/nao1215/mobileqa/internal/database"
	"github.com/nao1215/mobileqa/internal/model"
)

// seedHistory stores two runs and returns the database directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"older-run", "newer-run"} {
		page := model.NewLoadedPage(model.PageSpec{Name: "homepage", Path: "/"}, testBaseURL+"/", 200)
		if i == 1 {
			page.AddCheck(model.NewFailed("viewport_meta",
				model.NewIssue(model.SeverityHigh, "Missing viewport meta tag")))
		}
		begin := start.Add(time.Duration(i) * time.Hour)
		rep := model.NewRunReport(id, testBaseURL, config.DefaultViewport, begin, begin.Add(time.Minute),
			[]model.PageResult{page})
		if err := db.SaveRun(context.Background(), rep); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return dir
}

func execute(t *testing.T, cmdArgs ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(cmdArgs)
	err := root.Execute()
	return out.String(), err
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists runs newest first", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "history", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		newer := strings.Index(out, "newer-run")
		older := strings.Index(out, "older-run")
		if newer < 0 || older < 0 || newer > older {
			t.Errorf("expected newer-run before older-run:\n%s", out)
		}
		if !strings.Contains(out, "C:0 H:1 M:0 L:0") {
			t.Errorf("expected severity counts:\n%s", out)
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "history", "--db-dir", seedHistory(t), "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out, "older-run") || !strings.Contains(out, "Stored runs (1)") {
			t.Errorf("limit not applied:\n%s", out)
		}
	})

	t.Run("missing database is not an error", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "history", "--db-dir", filepath.Join(t.TempDir(), "none"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No runs found") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}

func TestShowCmd(t *testing.T) {
	t.Parallel()

	dbDir := seedHistory(t)

	t.Run("latest run as text", func(t *testing.T) {
		out, err := execute(t, "show", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "HIGH PRIORITY ISSUES:") || !strings.Contains(out, "[homepage] Missing viewport meta tag") {
			t.Errorf("expected the newer run:\n%s", out)
		}
	})

	t.Run("run by id as json", func(t *testing.T) {
		out, err := execute(t, "show", "older-run", "--db-dir", dbDir, "-f", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var rep model.RunReport
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if rep.RunID != "older-run" || rep.Summary.TotalIssues != 0 {
			t.Errorf("unexpected run %s with %d issues", rep.RunID, rep.Summary.TotalIssues)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := execute(t, "show", "newer-run", "--db-dir", dbDir, "--format", "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# Mobile QA Report") {
			t.Errorf("expected markdown report:\n%s", out)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		if _, err := execute(t, "show", "nope", "--db-dir", dbDir); err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := execute(t, "show", "--db-dir", dbDir, "-f", "html"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestFormatCounts(t *testing.T) {
	t.Parallel()

	page := model.NewLoadedPage(model.PageSpec{Name: "about", Path: "/about.html"}, testBaseURL+"/about.html", 200)
	page.AddCheck(model.NewFailed("font_size", model.NewIssue(model.SeverityMedium, "small text")))
	page.AddCheck(model.NewFailed("tap_targets", model.NewIssue(model.SeverityLow, "crowded")))
	s := model.Summarize([]model.PageResult{page})

	if got, want := formatCounts(s), "C:0 H:0 M:1 L:1"; got != want {
		t.Errorf("formatCounts() = %q, expected %q", got, want)
	}
}
