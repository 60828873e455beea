package check

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/browser/browsertest"
	"github.com/nao1215/mobileqa/internal/menu"
	"github.com/nao1215/mobileqa/internal/model"
)

func TestRegistryOrder(t *testing.T) {
	t.Parallel()

	want := []string{
		NameNoHorizontalOverflow,
		NameMenuTriggerPresent,
		NameMenuOpensAndCloses,
		NameTextReadable,
		NameTapTargets,
		NameHeroHeight,
		NameImagesFitViewport,
		NameGridStacks,
		NameFormInputsUsable,
		NameFooterNavigable,
		NameTouchSpacing,
		NameViewportMeta,
		NameImageAltText,
	}
	if diff := cmp.Diff(want, NewRegistry(Thresholds{}).Names()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryWithout(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Thresholds{})
	trimmed := r.Without(NameImageAltText, NameTouchSpacing)
	if len(trimmed.Checks()) != len(r.Checks())-2 {
		t.Errorf("expected two checks removed, got %v", trimmed.Names())
	}
	if len(r.Checks()) != 13 {
		t.Error("Without must not modify the original registry")
	}
	if !IsBuiltin(NameGridStacks) || IsBuiltin("unknown") {
		t.Error("IsBuiltin mismatch")
	}
}

func TestRegistryCustomThresholds(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Thresholds{MinTapTarget: 48})
	state := stateOf(&Snapshot{TapTargets: []Box{{Tag: "button", Rect: Rect{Width: 46, Height: 46}}}})
	for _, c := range r.Checks() {
		if c.Name() != NameTapTargets {
			continue
		}
		out, err := c.Evaluate(state)
		if err != nil {
			t.Fatal(err)
		}
		if out.Passed {
			t.Error("46x46 should fail with a 48px minimum")
		}
	}
}

// cleanSnapshot returns a snapshot of a page that passes every check.
func cleanSnapshot() *Snapshot {
	return &Snapshot{
		ScrollWidth:    375,
		ClientWidth:    375,
		ViewportWidth:  375,
		ViewportHeight: 812,
		Texts:          []TextElement{{Tag: "p", Text: "Welcome", FontSize: 16}},
		TapTargets:     []Box{{Tag: "button", Text: "Call us", Rect: Rect{Width: 120, Height: 48}}},
		Hero:           &Box{Tag: "section", Rect: Rect{Width: 375, Height: 500}},
		Images:         []Image{{Src: "hero.jpg", NaturalWidth: 1200, Width: 375}},
		Footer:         &Footer{Links: []Box{{Tag: "a", Text: "Privacy", Rect: Rect{Height: 44}}}},
		HTML:           `<html><head><meta name="viewport" content="width=device-width"></head><body><img src="hero.jpg" alt="Hero"></body></html>`,
	}
}

func TestRegistryRunCleanPage(t *testing.T) {
	t.Parallel()

	state := &PageState{Snapshot: cleanSnapshot(), Menu: &menu.Result{TriggerFound: true, Opened: true, Closed: true}}
	results := NewRegistry(Thresholds{}).Run(state)
	if len(results) != 13 {
		t.Fatalf("results = %d, expected 13", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s failed: %s", r.Name, r.Issue.Description)
		}
	}
}

// TestRegistryRunIsDeterministic evaluates the same state twice and expects
// identical verdicts.
func TestRegistryRunIsDeterministic(t *testing.T) {
	t.Parallel()

	snap := cleanSnapshot()
	snap.ScrollWidth = 500
	snap.TapTargets = append(snap.TapTargets, Box{Tag: "a", Rect: Rect{Width: 20, Height: 20}})
	r := NewRegistry(Thresholds{})

	first := r.Run(&PageState{Snapshot: snap, Menu: &menu.Result{}})
	second := r.Run(&PageState{Snapshot: snap, Menu: &menu.Result{}})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}

	failed := map[string]model.Severity{}
	for _, res := range first {
		if !res.Passed {
			failed[res.Name] = res.Issue.Severity
		}
	}
	want := map[string]model.Severity{
		NameNoHorizontalOverflow: model.SeverityCritical,
		NameMenuTriggerPresent:   model.SeverityHigh,
		NameTapTargets:           model.SeverityMedium,
	}
	if diff := cmp.Diff(want, failed); diff != "" {
		t.Errorf("failed checks mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	const url = "https://example.com/"
	raw := map[string]any{
		"scroll_width":    375,
		"client_width":    375,
		"viewport_width":  375,
		"viewport_height": 812,
		"texts":           []any{map[string]any{"tag": "p", "text": "Hi", "font_size": 12.5}},
		"tap_targets": []any{
			map[string]any{"tag": "button", "text": "Go", "top": 10, "left": 5, "width": 43, "height": 50},
		},
		"hero":   nil,
		"footer": map[string]any{"links": []any{map[string]any{"tag": "a", "text": "x", "height": 12}}},
		"html":   "<html></html>",
	}
	var gotScript string
	session := browsertest.New(map[string]*browsertest.Page{url: {
		Eval: func(expression string) (any, error) {
			gotScript = expression
			return raw, nil
		},
	}})
	if _, err := session.Navigate(context.Background(), url, browser.NavigateOptions{}); err != nil {
		t.Fatal(err)
	}

	snap, err := Collect(context.Background(), session)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if gotScript != snapshotScript {
		t.Error("Collect should evaluate the snapshot script")
	}

	want := &Snapshot{
		ScrollWidth:    375,
		ClientWidth:    375,
		ViewportWidth:  375,
		ViewportHeight: 812,
		Texts:          []TextElement{{Tag: "p", Text: "Hi", FontSize: 12.5}},
		TapTargets:     []Box{{Tag: "button", Text: "Go", Rect: Rect{Top: 10, Left: 5, Width: 43, Height: 50}}},
		Footer:         &Footer{Links: []Box{{Tag: "a", Text: "x", Rect: Rect{Height: 12}}}},
		HTML:           "<html></html>",
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectError(t *testing.T) {
	t.Parallel()

	const url = "https://example.com/"
	session := browsertest.New(map[string]*browsertest.Page{url: {}})
	if _, err := session.Navigate(context.Background(), url, browser.NavigateOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := Collect(context.Background(), session); err == nil {
		t.Error("expected error from page without evaluator")
	}
}
