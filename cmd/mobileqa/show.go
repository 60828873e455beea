package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/mobileqa/internal/config"
	"github.com/nao1215/mobileqa/internal/database"
	"github.com/nao1215/mobileqa/internal/model"
	"github.com/nao1215/mobileqa/internal/report"
)

// Output formats of the show command.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print a stored run",
		Long: `Show prints a run from the history database. Without a run ID the most
recent run is shown.

Examples:
  # Print the latest run
  mobileqa show

  # Print a run as Markdown, e.g. for a pull request comment
  mobileqa show 5f0c2a9e-... --format markdown

  # Export a run as JSON
  mobileqa show --format json > results.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().StringP("format", "f", formatText,
		"Output format: text, markdown or json")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	// Validate the format before opening the database.
	if format != formatText && format != formatMarkdown && format != formatJSON {
		return fmt.Errorf("unknown format %q (use text, markdown or json)", format)
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := openHistory(dbDir)
	if errors.Is(err, database.ErrNotFound) {
		return errors.New("no runs found in the database (use 'mobileqa run' first)")
	}
	if err != nil {
		return err
	}
	defer db.Close()

	var rep *model.RunReport
	if len(args) == 1 {
		rep, err = db.GetRun(cmd.Context(), args[0])
	} else {
		rep, err = db.GetLatestRun(cmd.Context())
	}
	if errors.Is(err, database.ErrRunNotFound) && len(args) == 1 {
		return fmt.Errorf("run %s not found (use 'mobileqa history' to list runs)", args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var w report.Writer
	switch format {
	case formatMarkdown:
		w = report.NewMarkdownWriter(out)
	case formatJSON:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	default:
		w = report.NewTextWriter(out, report.WithColor(colorEnabled(out)),
			report.WithVerbose(getPersistentBool(cmd, "verbose")))
	}
	_, err = w.Write(rep)
	return err
}
