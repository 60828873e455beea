package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/config"
	"github.com/nao1215/mobileqa/internal/database"
	"github.com/nao1215/mobileqa/internal/model"
	"github.com/nao1215/mobileqa/internal/pipeline"
	"github.com/nao1215/mobileqa/internal/report"
)

// errQualityGate is returned when --fail-on finds blocking issues.
var errQualityGate = errors.New("quality gate failed")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [path...]",
		Short: "Run the mobile QA checks against a site",
		Long: `Run loads every page of the catalog in an emulated phone browser,
probes the mobile menu, runs the heuristic checks and reports the issues.

The catalog comes from the configuration file (.mobileqa). Paths given as
arguments replace it; their names are derived from the path ("/" becomes
"homepage", "/markets/car-wash.html" becomes "markets-car-wash").

Every page is tested even when earlier pages fail. The results are written to
<output>/mobile-qa-results.json, a summary is printed, and the run is stored
in the local history database.

Examples:
  # Test the catalog from .mobileqa
  mobileqa run

  # Test two pages of a site without a config file
  mobileqa run --base-url https://staging.example.com / /contact.html

  # Fail a CI job when HIGH or CRITICAL issues exist
  mobileqa run --fail-on high

  # Use a browser that is already running
  mobileqa run --remote-browser ws://127.0.0.1:9222/devtools/browser/<id>

  # Also write a Markdown report
  mobileqa run -m qa-report.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mobileqa in current or home directory)")

	// Target flags
	cmd.Flags().StringP("base-url", "u", "",
		"Base URL of the site under test (overrides base_url)")

	// Browser flags
	cmd.Flags().String("remote-browser", "",
		"DevTools websocket URL of a running browser instead of a local headless Chrome")
	cmd.Flags().String("chrome-path", "",
		"Chrome executable for the local browser")

	// Timing flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultNavigationTimeout,
		"Navigation timeout for each page")
	cmd.Flags().Duration("page-timeout", config.DefaultPageTimeout,
		"Time allowed for menu probe, checks and screenshots on each page")
	cmd.Flags().Duration("settle", config.DefaultSettleDelay,
		"Pause after load before the page is inspected")
	cmd.Flags().String("wait-until", "networkidle",
		"Navigation completion signal: networkidle or load")

	// Check flags
	cmd.Flags().StringSlice("disable", nil,
		"Built-in checks to skip (repeatable or comma separated)")
	cmd.Flags().String("fail-on", "",
		"Exit non-zero when issues of this severity or worse exist (critical, high, medium, low)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory for screenshots and the results file")
	cmd.Flags().StringP("markdown", "m", "",
		"Also write a Markdown report to this path")
	cmd.Flags().Bool("no-screenshots", false,
		"Do not capture screenshots")
	cmd.Flags().Bool("no-db", false,
		"Do not store the run in the history database")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := runOutput{
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		color:  colorEnabled(cmd.OutOrStdout()),
	}
	rep, err := executeRun(ctx, cfg, browser.NewOpenFunc(browserOptions(cfg, logger)...), out, logger)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return qualityGate(cfg, rep)
}

// buildConfig layers the config file and the command line onto the defaults.
// Flags only override the file when they were given explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	stringFlags := map[string]*string{
		"base-url":       &cfg.BaseURL,
		"remote-browser": &cfg.RemoteBrowser,
		"chrome-path":    &cfg.ChromePath,
		"fail-on":        &cfg.FailOn,
		"output":         &cfg.OutputDir,
		"markdown":       &cfg.MarkdownFile,
		"wait-until":     &cfg.WaitUntil,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	durationFlags := map[string]*time.Duration{
		"timeout":      &cfg.NavigationTimeout,
		"page-timeout": &cfg.PageTimeout,
		"settle":       &cfg.SettleDelay,
	}
	for name, dst := range durationFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetDuration(name); err != nil {
			return nil, err
		}
	}

	disabled, err := flags.GetStringSlice("disable")
	if err != nil {
		return nil, err
	}
	cfg.DisabledChecks = append(cfg.DisabledChecks, disabled...)

	noScreenshots, err := flags.GetBool("no-screenshots")
	if err != nil {
		return nil, err
	}
	cfg.Screenshots = !noScreenshots

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.Verbose = getPersistentBool(cmd, "verbose")
	cfg.LogJSON = getPersistentBool(cmd, "log-json")

	if len(args) > 0 {
		cfg.Pages = make([]model.PageSpec, 0, len(args))
		for _, path := range args {
			cfg.Pages = append(cfg.Pages, model.SpecFromPath(path))
		}
	}

	return cfg, nil
}

// applyConfigFile loads the configuration file onto cfg.
// If the user explicitly specified a path, a missing file is an error;
// otherwise running without a file is allowed.
func applyConfigFile(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	f.Apply(cfg)
	cfg.ConfigFilePath = path
	return nil
}

// browserOptions translates the configuration into session options.
func browserOptions(cfg *config.Config, logger *slog.Logger) []browser.Option {
	opts := []browser.Option{
		browser.WithViewport(cfg.Viewport.Width, cfg.Viewport.Height, cfg.Viewport.Scale),
		browser.WithLogger(logger),
	}
	if cfg.RemoteBrowser != "" {
		opts = append(opts, browser.WithRemote(cfg.RemoteBrowser))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, browser.WithExecPath(cfg.ChromePath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, browser.WithUserAgent(cfg.UserAgent))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, browser.WithHeaders(cfg.Headers))
	}
	return opts
}

// runOutput holds the console streams of a run.
type runOutput struct {
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// executeRun tests every page on one browser session, writes the results
// and prints the summary. Page failures are part of the report, not errors;
// only a browser that cannot be started or outputs that cannot be written
// fail the run.
func executeRun(ctx context.Context, cfg *config.Config, open browser.OpenFunc, out runOutput, logger *slog.Logger) (*model.RunReport, error) {
	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithRegistry(cfg.Registry()),
		pipeline.WithMenuOptions(cfg.MenuOptions()),
		pipeline.WithNavigationTimeout(cfg.NavigationTimeout),
		pipeline.WithWaitUntil(cfg.NavigationWait()),
		pipeline.WithPageTimeout(cfg.PageTimeout),
		pipeline.WithSettleDelay(cfg.SettleDelay),
		pipeline.WithRunnerLogger(logger),
	}
	if cfg.Screenshots {
		runnerOpts = append(runnerOpts, pipeline.WithScreenshotDir(cfg.OutputDir))
	}
	aggregator := pipeline.NewAggregator(
		pipeline.NewPageRunner(cfg.BaseURL, runnerOpts...),
		pipeline.WithProgress(progressPrinter(out.stderr)),
		pipeline.WithAggregatorLogger(logger),
	)

	fmt.Fprintf(out.stderr, "Testing %d pages on %s (%s)...\n\n", len(cfg.Pages), cfg.BaseURL, cfg.Viewport)

	runID := uuid.NewString()
	started := time.Now()
	var pages []model.PageResult
	err := pipeline.RunWithSession(ctx, open, func(ctx context.Context, session browser.Session) error {
		_, pages = aggregator.RunAll(ctx, cfg.Pages, session)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep := model.NewRunReport(runID, cfg.BaseURL, cfg.Viewport, started, time.Now(), pages)
	rep.Version = getVersion()

	resultsPath := filepath.Join(cfg.OutputDir, report.ResultsFileName)
	sinkOpts := []report.SinkOption{
		report.WithJSONFile(resultsPath),
		report.WithSinkLogger(logger),
	}
	if cfg.MarkdownFile != "" {
		sinkOpts = append(sinkOpts, report.WithMarkdownFile(cfg.MarkdownFile))
	}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		sinkOpts = append(sinkOpts, report.WithStore(db))
	}

	// An interrupted run still records the pages it finished.
	if err := report.NewSink(sinkOpts...).Write(context.WithoutCancel(ctx), rep); err != nil {
		return nil, err
	}

	w := report.NewTextWriter(out.stdout, report.WithColor(out.color), report.WithVerbose(cfg.Verbose))
	if _, err := w.Write(rep); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	if cfg.Screenshots {
		fmt.Fprintf(out.stdout, "Screenshots saved to: %s\n", cfg.OutputDir)
	}
	fmt.Fprintf(out.stdout, "Full results saved to: %s\n", resultsPath)
	if cfg.MarkdownFile != "" {
		fmt.Fprintf(out.stdout, "Markdown report saved to: %s\n", cfg.MarkdownFile)
	}
	if cfg.SaveToDB {
		fmt.Fprintf(out.stdout, "Run ID: %s\n", rep.RunID)
	}

	return rep, nil
}

// progressPrinter reports each finished page on w.
func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(index, total int, result model.PageResult) {
		if !result.Loaded {
			desc := ""
			if issues := result.Issues(); len(issues) > 0 {
				desc = issues[0].Description
			}
			fmt.Fprintf(w, "[%d/%d] ✗ %s: %s\n", index, total, result.Page.Name, desc)
			return
		}
		fmt.Fprintf(w, "[%d/%d] ✓ %s: %d issue(s)\n", index, total, result.Page.Name, len(result.Issues()))
	}
}

// qualityGate applies --fail-on to a finished run.
func qualityGate(cfg *config.Config, rep *model.RunReport) error {
	if cfg.FailOn == "" {
		return nil
	}
	threshold, err := model.ParseSeverity(cfg.FailOn)
	if err != nil {
		return err
	}
	if n := rep.BlockingIssues(threshold); n > 0 {
		return fmt.Errorf("%w: %d issue(s) at %s or above", errQualityGate, n, threshold)
	}
	return nil
}
