package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		bi       *debug.BuildInfo
		version  string
		commit   string
		date     string
		modified bool
	}{
		{
			name:    "no build info",
			version: "dev", commit: "unknown", date: "unknown",
		},
		{
			name: "vcs stamp",
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.time", Value: "2026-01-27T10:30:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			version: "dev", commit: "0123456789abcdef0123", date: "2026-01-27T10:30:00Z", modified: true,
		},
		{
			name:    "module version",
			bi:      &debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}},
			version: "v0.3.1", commit: "unknown", date: "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.bi)
			if got.Version != tt.version || got.GitCommit != tt.commit || got.BuildDate != tt.date || got.Modified != tt.modified {
				t.Errorf("resolve = %+v", got)
			}
			if got.Platform == "" || got.GoVersion == "" {
				t.Error("runtime fields not filled")
			}
		})
	}
}

func TestResolve_LdflagsWin(t *testing.T) {
	saved := GitCommit
	GitCommit = "abc123"
	defer func() { GitCommit = saved }()

	got := resolve(&debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}}})
	if got.GitCommit != "abc123" {
		t.Errorf("GitCommit = %q, want ldflags value", got.GitCommit)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, String()) || !strings.Contains(full, "commit") {
		t.Errorf("Full() = %q", full)
	}
}
