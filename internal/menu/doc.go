// Package menu probes the mobile navigation menu of a page.
//
// Probe locates a menu trigger using an ordered list of selector strategies,
// clicks it, and watches whether navigation links become visible and hidden
// again. The result feeds the menu_trigger_present and menu_opens_and_closes
// checks.
//
// A page without a trigger is a normal outcome, not an error. Probe only
// returns an error when its context is cancelled or times out; browser faults
// during the interaction are recorded in Result.Error.
package menu
