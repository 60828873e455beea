// Package model defines the data structures shared by every mobileqa package.
//
// This package contains the following main types:
//   - PageSpec: one catalog entry (name and relative path)
//   - Issue and Evidence: a severity-tagged problem and its bounded evidence
//   - CheckResult: the outcome of one heuristic check
//   - PageResult: all check results of one page
//   - RunSummary: the run-level rollup, derived from page results by Summarize
//   - RunReport: the persisted report document
//
// Models live in their own package so that the check, pipeline, report and
// database packages can share them without import cycles. All types encode to
// JSON and decode back without loss.
package model
