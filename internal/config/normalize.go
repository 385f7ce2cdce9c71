package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConnect()
	c.normalizeTools()
	c.normalizeTracks()
	c.normalizePipeline()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if value, ok := os.LookupEnv("CONNECT2VID_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConnect() {
	c.Connect.HostDomain = strings.ToLower(strings.TrimSpace(c.Connect.HostDomain))
	if c.Connect.HostDomain == "" {
		c.Connect.HostDomain = defaultHostDomain
	}
	c.Connect.URLTemplate = strings.TrimSpace(c.Connect.URLTemplate)
	if c.Connect.URLTemplate == "" {
		c.Connect.URLTemplate = defaultURLTemplate
	}
}

func (c *Config) normalizeTools() {
	c.Tools.Wget = defaultString(c.Tools.Wget, defaultWgetBinary)
	c.Tools.Unzip = defaultString(c.Tools.Unzip, defaultUnzipBinary)
	c.Tools.FFmpeg = defaultString(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = defaultString(c.Tools.FFprobe, defaultFFprobeBinary)
}

func (c *Config) normalizeTracks() {
	c.Tracks.VoicePattern = defaultString(c.Tracks.VoicePattern, defaultVoicePattern)
	c.Tracks.ScreenPattern = defaultString(c.Tracks.ScreenPattern, defaultScreenPattern)
	c.Tracks.Extension = defaultString(c.Tracks.Extension, defaultExtension)
	if !strings.HasPrefix(c.Tracks.Extension, ".") {
		c.Tracks.Extension = "." + c.Tracks.Extension
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Pipeline.FailurePolicy))
	if c.Pipeline.FailurePolicy == "" {
		c.Pipeline.FailurePolicy = FailurePolicyContinue
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv("CONNECT2VID_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
