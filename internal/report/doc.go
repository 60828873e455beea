// Package report renders and stores the outcome of a run.
//
// Writers turn a model.RunReport into one output format:
//   - TextWriter: the console summary, optionally colored
//   - JSONWriter: the results document consumed by other tools
//   - MarkdownWriter: a shareable report with a severity chart
//
// A Sink writes the results file, the Markdown report and the history
// store concurrently once the run is complete.
package report
