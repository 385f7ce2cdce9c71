package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"connect2vid/internal/config"
)

// ConfigOption customizes the configuration built by NewConfig.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults with work and state directories inside a fresh
// temp directory, so tests never touch the real home directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// WithFailurePolicy sets pipeline.failure_policy.
func WithFailurePolicy(policy string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Pipeline.FailurePolicy = policy
	}
}

// WithoutHistory disables the run history database.
func WithoutHistory() ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Pipeline.RecordHistory = false
	}
}

// WithStubbedBinaries installs executables that exit 0 for every configured
// tool and puts them first on PATH.
func WithStubbedBinaries() ConfigOption {
	return func(t testing.TB, base string, cfg *config.Config) {
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range []string{cfg.Tools.Wget, cfg.Tools.Unzip, cfg.Tools.FFmpeg, cfg.Tools.FFprobe} {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
