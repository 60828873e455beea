package check

import (
	"slices"

	"github.com/nao1215/mobileqa/internal/model"
)

// Registry holds the checks to run, in a fixed order.
// The order has no effect on verdicts; it keeps reports stable across runs.
type Registry struct {
	checks []Check
}

// NewRegistry creates a registry with every built-in check.
// Zero thresholds fall back to their defaults.
func NewRegistry(t Thresholds) *Registry {
	t = t.WithDefaults()

	r := &Registry{checks: make([]Check, 0, 13)}

	// Layout
	r.Register(NewOverflowCheck())

	// Navigation
	r.Register(NewMenuTriggerCheck())
	r.Register(NewMenuBehaviorCheck())

	// Readability and touch
	r.Register(NewTextCheck(t))
	r.Register(NewTapTargetCheck(t))
	r.Register(NewHeroCheck(t))
	r.Register(NewImageCheck())
	r.Register(NewGridCheck(t))
	r.Register(NewFormCheck(t))
	r.Register(NewFooterCheck(t))
	r.Register(NewSpacingCheck(t))

	// Markup
	r.Register(NewViewportMetaCheck())
	r.Register(NewAltTextCheck())

	return r
}

// Register appends a check.
func (r *Registry) Register(c Check) {
	r.checks = append(r.checks, c)
}

// Without returns a copy of the registry without the named checks.
func (r *Registry) Without(names ...string) *Registry {
	out := &Registry{checks: make([]Check, 0, len(r.checks))}
	for _, c := range r.checks {
		if !slices.Contains(names, c.Name()) {
			out.checks = append(out.checks, c)
		}
	}
	return out
}

// Checks returns the registered checks in run order.
func (r *Registry) Checks() []Check {
	return slices.Clone(r.checks)
}

// Names returns the names of the registered checks in run order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.checks))
	for i, c := range r.checks {
		names[i] = c.Name()
	}
	return names
}

// Run evaluates every check against state.
func (r *Registry) Run(state *PageState) []model.CheckResult {
	results := make([]model.CheckResult, 0, len(r.checks))
	for _, c := range r.checks {
		results = append(results, Run(c, state))
	}
	return results
}

// IsBuiltin reports whether name is a built-in check.
func IsBuiltin(name string) bool {
	return slices.Contains(NewRegistry(Thresholds{}).Names(), name)
}
