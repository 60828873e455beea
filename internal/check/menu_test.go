package check

import (
	"errors"
	"testing"

	"github.com/nao1215/mobileqa/internal/menu"
)

func TestMenuTriggerCheck(t *testing.T) {
	t.Parallel()

	c := NewMenuTriggerCheck()

	out, err := c.Evaluate(&PageState{Menu: &menu.Result{TriggerFound: true}})
	if err != nil || !out.Passed {
		t.Errorf("found trigger should pass: %+v, %v", out, err)
	}

	out, err = c.Evaluate(&PageState{Menu: &menu.Result{}})
	if err != nil || out.Passed {
		t.Errorf("missing trigger should fail: %+v, %v", out, err)
	}

	if _, err := c.Evaluate(&PageState{}); !errors.Is(err, ErrNoMenuProbe) {
		t.Errorf("expected ErrNoMenuProbe, got %v", err)
	}
}

func TestMenuBehaviorCheck(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		probe       menu.Result
		passed      bool
		description string
	}{
		{"no trigger passes", menu.Result{}, true, ""},
		{"opens and closes passes", menu.Result{TriggerFound: true, Opened: true, Closed: true}, true, ""},
		{
			"does not open fails",
			menu.Result{TriggerFound: true},
			false,
			"Mobile menu did not reveal navigation links when opened",
		},
		{
			"does not close fails",
			menu.Result{TriggerFound: true, Opened: true},
			false,
			"Mobile menu did not close",
		},
		{
			"interaction error fails",
			menu.Result{TriggerFound: true, Error: "open menu: node detached"},
			false,
			"Menu interaction error: open menu: node detached",
		},
	}

	c := NewMenuBehaviorCheck()
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			probe := tc.probe
			out, err := c.Evaluate(&PageState{Menu: &probe})
			if err != nil {
				t.Fatal(err)
			}
			if out.Passed != tc.passed {
				t.Errorf("passed = %v, expected %v", out.Passed, tc.passed)
			}
			if out.Description != tc.description {
				t.Errorf("description = %q, expected %q", out.Description, tc.description)
			}
		})
	}
}
