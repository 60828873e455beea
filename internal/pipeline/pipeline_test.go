package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *PageRun) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *PageRun) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("new pipeline is empty", func(t *testing.T) {
		t.Parallel()

		if n := len(New().StepNames()); n != 0 {
			t.Errorf("expected 0 steps, got %d", n)
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		if diff := cmp.Diff([]string{"first", "second", "third"}, p.StepNames()); diff != "" {
			t.Errorf("step names mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"a", "b", "c"} {
			name := name
			p.AddStep(&mockStep{name: name, doFunc: func(context.Context, *PageRun) error {
				order = append(order, name)
				return nil
			}})
		}

		run := &PageRun{}
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, run.Performed); diff != "" {
			t.Errorf("performed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops at the first error", func(t *testing.T) {
		t.Parallel()

		errStep := errors.New("step error")
		last := &mockStep{name: "last"}
		p := New()
		p.AddSteps(
			&mockStep{name: "fail", doFunc: func(context.Context, *PageRun) error { return errStep }},
			last,
		)

		if err := p.Execute(context.Background(), &PageRun{}); !errors.Is(err, errStep) {
			t.Errorf("expected step error, got %v", err)
		}
		if last.callCount != 0 {
			t.Error("steps after a failure must not run")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		if err := p.Execute(ctx, &PageRun{}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
	})
}

func TestLoadErrorDescription(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  *LoadError
		want string
	}{
		{"bad status", &LoadError{StatusCode: 404, Err: ErrBadStatus}, "Page failed to load: HTTP 404"},
		{"transport", &LoadError{Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}, "Page failed to load: net::ERR_NAME_NOT_RESOLVED"},
		{"no cause", &LoadError{}, "Page failed to load: unknown error"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.err.Description(); got != tc.want {
				t.Errorf("Description() = %q, expected %q", got, tc.want)
			}
		})
	}
}
