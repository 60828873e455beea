package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo describes the running binary. It is stored with every run so a
// report can be traced back to the harness that produced it.
type buildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

// currentBuild resolves the build information of this binary.
func currentBuild() buildInfo {
	return resolveBuild(buildInfo{Version: version, Commit: commit, Date: date}, debug.ReadBuildInfo)
}

// resolveBuild fills the fields that ldflags left empty from the module
// build info recorded by the Go toolchain.
func resolveBuild(ld buildInfo, read func() (*debug.BuildInfo, bool)) buildInfo {
	b := buildInfo{Version: "(devel)", Commit: "unknown", Date: "unknown", GoVersion: "unknown"}
	if info, ok := read(); ok && info != nil {
		if info.Main.Version != "" {
			b.Version = info.Main.Version
		}
		if info.GoVersion != "" {
			b.GoVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				b.Commit = shortRevision(s.Value)
			case "vcs.time":
				b.Date = s.Value
			}
		}
	}
	if ld.Version != "" {
		b.Version = ld.Version
	}
	if ld.Commit != "" {
		b.Commit = ld.Commit
	}
	if ld.Date != "" {
		b.Date = ld.Date
	}
	return b
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// getVersion returns the version recorded in run reports.
func getVersion() string {
	return currentBuild().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date and Go version of mobileqa.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			b := currentBuild()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mobileqa version %s\n", b.Version)
			fmt.Fprintf(out, "  commit: %s\n", b.Commit)
			fmt.Fprintf(out, "  built:  %s\n", b.Date)
			fmt.Fprintf(out, "  go:     %s\n", b.GoVersion)
		},
	}
}
