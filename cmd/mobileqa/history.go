package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/mobileqa/internal/config"
	"github.com/nao1215/mobileqa/internal/database"
	"github.com/nao1215/mobileqa/internal/model"
)

// historyTimeLayout formats run timestamps in listings.
const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs",
		Long: `History lists the runs stored in the local database, newest first.

Each line shows the run ID, when it started, the site and the issue counts
per severity. Use 'mobileqa show <run-id>' to print a stored run again.

Examples:
  # Show the last 20 runs
  mobileqa history

  # Show every stored run
  mobileqa history -n 0`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	db, err := openHistory(dbDir)
	if errors.Is(err, database.ErrNotFound) {
		printNoHistory(out)
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printNoHistory(out)
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %5s  %s\n", "Run ID", "Started", "Pages", "Issues")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %5d  %s  %s\n",
			run.RunID,
			run.StartedAt.Local().Format(historyTimeLayout),
			run.Summary.TotalPages,
			formatCounts(run.Summary),
			run.BaseURL,
		)
	}
	fmt.Fprintln(out, "\nUse 'mobileqa show <run-id>' to print a run again.")
	return nil
}

// openHistory opens an existing history database without creating one.
func openHistory(dbDir string) (*database.RunDB, error) {
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func printNoHistory(out io.Writer) {
	fmt.Fprintln(out, "No runs found in the database.")
	fmt.Fprintln(out, "\nUse 'mobileqa run' to test a site.")
}

// formatCounts renders per-severity counts as "C:0 H:1 M:3 L:2".
func formatCounts(s model.RunSummary) string {
	parts := make([]string, 0, 4)
	for _, sev := range model.Severities() {
		parts = append(parts, fmt.Sprintf("%c:%d", sev.String()[0], s.Count(sev)))
	}
	return strings.Join(parts, " ")
}
