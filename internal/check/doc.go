// Package check implements the heuristic mobile layout checks.
//
// Each check is a pure function of a PageState: the raw measurements
// collected from the rendered page by Collect, plus the outcome of the menu
// probe. Thresholds are applied in Go rather than in the page script, so the
// checks can be tested without a browser and tuned through Thresholds.
//
// Run executes one check and converts its outcome into a model.CheckResult.
// An error or panic inside a check becomes a MEDIUM issue on that check only;
// the other checks of the page still run.
package check
