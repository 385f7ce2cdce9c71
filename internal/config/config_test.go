package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"connect2vid/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "connect2vid")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected absolute work dir, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Connect.HostDomain != "adobeconnect.com" {
		t.Fatalf("unexpected host domain: %q", cfg.Connect.HostDomain)
	}
	if cfg.Tracks.VoicePattern != "cameraVoip_*.flv" || cfg.Tracks.ScreenPattern != "screenshare_*.flv" {
		t.Fatalf("unexpected track patterns: %+v", cfg.Tracks)
	}
	if cfg.Pipeline.FailurePolicy != config.FailurePolicyContinue {
		t.Fatalf("expected continue failure policy by default, got %q", cfg.Pipeline.FailurePolicy)
	}
	if cfg.AbortOnFailure() {
		t.Fatal("expected AbortOnFailure false by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "connect2vid.toml")

	type payload struct {
		Connect struct {
			URLTemplate string `toml:"url_template"`
		} `toml:"connect"`
		Tools struct {
			FFmpeg string `toml:"ffmpeg"`
		} `toml:"tools"`
		Pipeline struct {
			FailurePolicy string `toml:"failure_policy"`
		} `toml:"pipeline"`
	}
	custom := payload{}
	custom.Connect.URLTemplate = "https://connect.example.edu/{id}/output/{id}.zip?download=zip"
	custom.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	custom.Pipeline.FailurePolicy = "ABORT"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg override, got %q", cfg.Tools.FFmpeg)
	}
	if !cfg.AbortOnFailure() {
		t.Fatal("expected abort policy after normalization")
	}
	if got := cfg.DownloadURL("pqc06mcawjgn"); got != "https://connect.example.edu/pqc06mcawjgn/output/pqc06mcawjgn.zip?download=zip" {
		t.Fatalf("unexpected download url: %q", got)
	}
	if cfg.Tools.Wget != "wget" {
		t.Fatalf("expected wget default to survive partial config, got %q", cfg.Tools.Wget)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "connect2vid.toml")
	if err := os.WriteFile(configPath, []byte("[tools]\nwgte = \"wget\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "connect2vid.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestDefaultDownloadURL(t *testing.T) {
	cfg := config.Default()
	want := "https://my.adobeconnect.com/pqc06mcawjgn/output/pqc06mcawjgn.zip?download=zip"
	if got := cfg.DownloadURL("pqc06mcawjgn"); got != want {
		t.Fatalf("DownloadURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesLogLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CONNECT2VID_LOG_LEVEL", " DEBUG ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level from env, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "url_template") {
		t.Fatalf("sample config missing url_template: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	def := config.Default()
	if cfg.Connect.URLTemplate != def.Connect.URLTemplate {
		t.Fatalf("sample url template %q differs from default %q", cfg.Connect.URLTemplate, def.Connect.URLTemplate)
	}
	if cfg.Tracks != def.Tracks {
		t.Fatalf("sample tracks %+v differ from defaults %+v", cfg.Tracks, def.Tracks)
	}
	if cfg.Pipeline != def.Pipeline {
		t.Fatalf("sample pipeline %+v differs from defaults %+v", cfg.Pipeline, def.Pipeline)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"template without placeholder": func(c *config.Config) { c.Connect.URLTemplate = "https://example.com/archive.zip" },
		"host with path":               func(c *config.Config) { c.Connect.HostDomain = "example.com/path" },
		"empty tool":                   func(c *config.Config) { c.Tools.Unzip = "" },
		"bad glob":                     func(c *config.Config) { c.Tracks.VoicePattern = "cameraVoip_[*.flv" },
		"identical patterns":           func(c *config.Config) { c.Tracks.ScreenPattern = c.Tracks.VoicePattern },
		"unknown policy":               func(c *config.Config) { c.Pipeline.FailurePolicy = "retry" },
		"unknown level":                func(c *config.Config) { c.Logging.Level = "trace" },
		"unknown format":               func(c *config.Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
