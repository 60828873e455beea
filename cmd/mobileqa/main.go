// Package main provides the entry point for the mobileqa CLI.
//
// mobileqa loads every page of a site in an emulated phone browser, runs
// mobile-responsiveness heuristics against the rendered page and reports
// the issues it finds, grouped by severity.
//
// Usage:
//
//	mobileqa init
//	mobileqa run
//	mobileqa run --base-url https://staging.example.com / /about.html
//
// See --help for all available options.
package main

// main is the entry point for mobileqa.
func main() {
	Execute()
}
