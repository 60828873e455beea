package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mobileqa.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mobileqa",
		Short: "Mobile responsiveness QA for websites",
		Long: `mobileqa visits every page of a site in a headless browser that emulates
a phone (375x812, 2x, touch), exercises the mobile menu and runs layout,
navigation, touch, typography, media, form and footer heuristics.

Issues are reported by severity (CRITICAL, HIGH, MEDIUM, LOW). Runs are
stored locally so earlier results can be listed and shown again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
