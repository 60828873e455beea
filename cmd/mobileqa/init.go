package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/mobileqa/internal/config"
)

//go:embed templates/mobileqa.yaml
var configTemplate embed.FS

// templatePath is the template location inside configTemplate.
const templatePath = "templates/mobileqa.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mobileqa configuration file",
		Long: `Initialize creates a new .mobileqa configuration file in the current directory.

The generated file includes:
- The base URL of the site under test
- A page catalog to adapt to your site
- Commented examples for headers, thresholds, disabled checks and timeouts

Examples:
  # Create .mobileqa in current directory
  mobileqa init

  # Create config file at a specific path
  mobileqa init -o qa/staging.yaml

  # Force overwrite existing file
  mobileqa init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may hold staging credentials, so it is private to the owner.
	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to describe the site under test:")
	fmt.Fprintln(out, "  - base_url and the list of pages")
	fmt.Fprintln(out, "  - headers for protected staging environments")
	fmt.Fprintln(out, "  - check thresholds and timeouts")
	fmt.Fprintln(out, "\nThen run: mobileqa run")

	return nil
}
