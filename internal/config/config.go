package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir    string `toml:"cache_dir"`
	FallbackDir string `toml:"fallback_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
	RunDBPath   string `toml:"run_db_path"`
}

// ArchiveOrg contains configuration for the archive.org search adapter.
type ArchiveOrg struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// Wikimedia contains configuration for the Wikimedia Commons adapter.
type Wikimedia struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// Europeana contains configuration for the Europeana Search API adapter.
type Europeana struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// Search contains cross-provider federated search settings.
type Search struct {
	MaxResultsPerQuery int `toml:"max_results_per_query"`
	RequestTimeout     int `toml:"request_timeout"`     // seconds
	ThrottleMillis     int `toml:"throttle_millis"`     // min interval between calls to one provider
	MaxConcurrent      int `toml:"max_concurrent"`      // bounded worker pool size
	CacheMaxAgeHours   int `toml:"cache_max_age_hours"` // 0 means cache entries never expire
}

// Guardrail contains query sanitizer settings.
type Guardrail struct {
	MinValidQueries int `toml:"min_valid_queries"`
	RepairAttempts  int `toml:"repair_attempts"`
	MaxQueries      int `toml:"max_queries"`
}

// Relevance contains anchor and topic gate thresholds.
type Relevance struct {
	WeakOverlapMin  int     `toml:"weak_overlap_min"`
	TopicValidation bool    `toml:"topic_validation"`
	TopicSimilarity float64 `toml:"topic_similarity"`
}

// FrameCheck contains perceptual quality gate settings.
type FrameCheck struct {
	Enabled             bool   `toml:"enabled"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	MinWidth            int    `toml:"min_width"`
	MinHeight           int    `toml:"min_height"`
}

// Planner contains shared LLM connection settings for draft shot plans.
type Planner struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shotscout.
//
// Configuration sections by subsystem:
//   - Paths: cache, fallback pool, output, logs, run database
//   - ArchiveOrg / Wikimedia / Europeana: search provider adapters
//   - Search: federated search throttling, timeouts, concurrency
//   - Guardrail: query sanitizer limits
//   - Relevance: anchor and topic gate thresholds
//   - FrameCheck: perceptual quality gate and media probe binaries
//   - Planner: LLM connection for best-effort draft shot plans
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	ArchiveOrg ArchiveOrg `toml:"archive_org"`
	Wikimedia  Wikimedia  `toml:"wikimedia"`
	Europeana  Europeana  `toml:"europeana"`
	Search     Search     `toml:"search"`
	Guardrail  Guardrail  `toml:"guardrail"`
	Relevance  Relevance  `toml:"relevance"`
	FrameCheck FrameCheck `toml:"frame_check"`
	Planner    Planner    `toml:"planner"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shotscout/config.toml")
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean result
// reports whether a config file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func applyEnvOverrides(cfg *Config) {
	if key := strings.TrimSpace(os.Getenv("EUROPEANA_API_KEY")); key != "" {
		cfg.Europeana.APIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("SHOTSCOUT_LLM_API_KEY")); key != "" {
		cfg.Planner.APIKey = key
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shotscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run needs.
// The fallback pool directory is created on a best-effort basis so runs can
// proceed (without the safety net) when it lives on unavailable storage.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.FallbackDir) != "" {
		_ = os.MkdirAll(c.Paths.FallbackDir, 0o755)
	}
	if dbDir := filepath.Dir(c.Paths.RunDBPath); dbDir != "" {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return fmt.Errorf("create run db directory %q: %w", dbDir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
