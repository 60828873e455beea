// Package pipeline runs the catalog through the browser.
//
// A PageRunner processes one page as an ordered list of Steps sharing a
// PageRun record: navigate, settle, screenshot, probe the menu, collect the
// page snapshot and run the checks. The Aggregator feeds the catalog through
// a single PageRunner, one page at a time on one browser session, and folds
// the results into a RunSummary.
//
// Pages never abort a run. Anything that prevents a page from being
// evaluated (HTTP errors, timeouts, cancellation) becomes a load failure on
// that page and the run moves on to the next one.
package pipeline
