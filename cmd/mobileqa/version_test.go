package main

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveBuild(t *testing.T) {
	t.Parallel()

	recorded := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.25.0",
			Main:      debug.Module{Path: "github.com/nao1215/mobileqa", Version: "v0.3.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs", Value: "git"},
				{Key: "vcs.revision", Value: "4f2a9c81d0e6b7aa"},
				{Key: "vcs.time", Value: "2026-04-01T10:00:00Z"},
			},
		}, true
	}
	missing := func() (*debug.BuildInfo, bool) { return nil, false }

	testCases := []struct {
		name string
		ld   buildInfo
		read func() (*debug.BuildInfo, bool)
		want buildInfo
	}{
		{
			name: "toolchain build info",
			read: recorded,
			want: buildInfo{Version: "v0.3.0", Commit: "4f2a9c8", Date: "2026-04-01T10:00:00Z", GoVersion: "go1.25.0"},
		},
		{
			name: "ldflags win over build info",
			ld:   buildInfo{Version: "v1.0.0", Commit: "abc1234"},
			read: recorded,
			want: buildInfo{Version: "v1.0.0", Commit: "abc1234", Date: "2026-04-01T10:00:00Z", GoVersion: "go1.25.0"},
		},
		{
			name: "no build info",
			read: missing,
			want: buildInfo{Version: "(devel)", Commit: "unknown", Date: "unknown", GoVersion: "unknown"},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, resolveBuild(tc.ld, tc.read)); diff != "" {
				t.Errorf("build info mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShortRevision(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"4f2a9c81d0e6": "4f2a9c8", "4f2a": "4f2a", "": ""} {
		if got := shortRevision(in); got != want {
			t.Errorf("shortRevision(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestVersionCmdOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "mobileqa version "+getVersion()) {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	for i, prefix := range []string{"  commit: ", "  built:  ", "  go:     "} {
		if !strings.HasPrefix(lines[i+1], prefix) || strings.TrimPrefix(lines[i+1], prefix) == "" {
			t.Errorf("line %d = %q, expected %q followed by a value", i+2, lines[i+1], prefix)
		}
	}

	if err := NewVersionCmd().Args(cmd, []string{"extra"}); err == nil {
		t.Error("version takes no arguments")
	}
}
