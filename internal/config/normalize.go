package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeFrameCheck()
	c.normalizePlanner()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FallbackDir) == "" {
		c.Paths.FallbackDir = defaultFallbackDir
	}
	if c.Paths.FallbackDir, err = expandPath(c.Paths.FallbackDir); err != nil {
		return fmt.Errorf("paths.fallback_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RunDBPath) == "" {
		c.Paths.RunDBPath = defaultRunDBPath
	}
	if c.Paths.RunDBPath, err = expandPath(c.Paths.RunDBPath); err != nil {
		return fmt.Errorf("paths.run_db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeProviders() {
	c.ArchiveOrg.BaseURL = strings.TrimRight(strings.TrimSpace(c.ArchiveOrg.BaseURL), "/")
	c.Wikimedia.BaseURL = strings.TrimRight(strings.TrimSpace(c.Wikimedia.BaseURL), "/")
	c.Europeana.BaseURL = strings.TrimRight(strings.TrimSpace(c.Europeana.BaseURL), "/")
	c.Europeana.APIKey = strings.TrimSpace(c.Europeana.APIKey)
}

func (c *Config) normalizeFrameCheck() {
	if strings.TrimSpace(c.FrameCheck.FFprobeBinary) == "" {
		c.FrameCheck.FFprobeBinary = "ffprobe"
	}
	if strings.TrimSpace(c.FrameCheck.FFmpegBinary) == "" {
		c.FrameCheck.FFmpegBinary = "ffmpeg"
	}
}

func (c *Config) normalizePlanner() {
	c.Planner.APIKey = strings.TrimSpace(c.Planner.APIKey)
	c.Planner.BaseURL = strings.TrimSpace(c.Planner.BaseURL)
	c.Planner.Model = strings.TrimSpace(c.Planner.Model)
	if c.Planner.BaseURL == "" {
		c.Planner.BaseURL = defaultPlannerBaseURL
	}
	if c.Planner.Model == "" {
		c.Planner.Model = defaultPlannerModel
	}
	if c.Planner.TimeoutSeconds <= 0 {
		c.Planner.TimeoutSeconds = defaultPlannerTimeout
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
