package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConnect(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateTracks(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateConnect() error {
	if strings.TrimSpace(c.Connect.HostDomain) == "" {
		return errors.New("connect.host_domain must be set")
	}
	if strings.Contains(c.Connect.HostDomain, "/") {
		return fmt.Errorf("connect.host_domain must be a host name, got %q", c.Connect.HostDomain)
	}
	if !strings.Contains(c.Connect.URLTemplate, URLPlaceholder) {
		return fmt.Errorf("connect.url_template must contain the %s placeholder", URLPlaceholder)
	}
	return nil
}

func (c *Config) validateTools() error {
	for key, value := range map[string]string{
		"tools.wget":    c.Tools.Wget,
		"tools.unzip":   c.Tools.Unzip,
		"tools.ffmpeg":  c.Tools.FFmpeg,
		"tools.ffprobe": c.Tools.FFprobe,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateTracks() error {
	for key, pattern := range map[string]string{
		"tracks.voice_pattern":  c.Tracks.VoicePattern,
		"tracks.screen_pattern": c.Tracks.ScreenPattern,
	} {
		if strings.ContainsRune(pattern, filepath.Separator) {
			return fmt.Errorf("%s must be a file name pattern, got %q", key, pattern)
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if c.Tracks.VoicePattern == c.Tracks.ScreenPattern {
		return errors.New("tracks.voice_pattern and tracks.screen_pattern must differ")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	switch c.Pipeline.FailurePolicy {
	case FailurePolicyContinue, FailurePolicyAbort:
		return nil
	default:
		return fmt.Errorf("pipeline.failure_policy must be %q or %q, got %q", FailurePolicyContinue, FailurePolicyAbort, c.Pipeline.FailurePolicy)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
