package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateGuardrail(); err != nil {
		return err
	}
	if err := c.validateRelevance(); err != nil {
		return err
	}
	if err := c.validateFrameCheck(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	if !c.ArchiveOrg.Enabled && !c.Wikimedia.Enabled && !c.Europeana.Enabled {
		return errors.New("at least one search provider must be enabled")
	}
	if c.ArchiveOrg.Enabled && strings.TrimSpace(c.ArchiveOrg.BaseURL) == "" {
		return errors.New("archive_org.base_url must be set when the provider is enabled")
	}
	if c.Wikimedia.Enabled && strings.TrimSpace(c.Wikimedia.BaseURL) == "" {
		return errors.New("wikimedia.base_url must be set when the provider is enabled")
	}
	if c.Europeana.Enabled {
		if strings.TrimSpace(c.Europeana.BaseURL) == "" {
			return errors.New("europeana.base_url must be set when the provider is enabled")
		}
		if strings.TrimSpace(c.Europeana.APIKey) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/shotscout/config.toml"
			}
			return fmt.Errorf("europeana.api_key is required. Set EUROPEANA_API_KEY env var or edit %s (create with 'shotscout config init')", defaultPath)
		}
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.MaxResultsPerQuery <= 0 {
		return errors.New("search.max_results_per_query must be positive")
	}
	if c.Search.RequestTimeout <= 0 {
		return errors.New("search.request_timeout must be positive")
	}
	if c.Search.ThrottleMillis < 0 {
		return errors.New("search.throttle_millis must not be negative")
	}
	if c.Search.MaxConcurrent <= 0 {
		return errors.New("search.max_concurrent must be positive")
	}
	if c.Search.CacheMaxAgeHours < 0 {
		return errors.New("search.cache_max_age_hours must not be negative")
	}
	return nil
}

func (c *Config) validateGuardrail() error {
	if c.Guardrail.MinValidQueries < 0 {
		return errors.New("guardrail.min_valid_queries must not be negative")
	}
	if c.Guardrail.RepairAttempts < 0 {
		return errors.New("guardrail.repair_attempts must not be negative")
	}
	if c.Guardrail.MaxQueries <= 0 {
		return errors.New("guardrail.max_queries must be positive")
	}
	return nil
}

func (c *Config) validateRelevance() error {
	if c.Relevance.WeakOverlapMin < 1 {
		return errors.New("relevance.weak_overlap_min must be at least 1")
	}
	if c.Relevance.TopicSimilarity < 0 || c.Relevance.TopicSimilarity > 1 {
		return errors.New("relevance.topic_similarity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateFrameCheck() error {
	if !c.FrameCheck.Enabled {
		return nil
	}
	if c.FrameCheck.ProbeTimeoutSeconds <= 0 {
		return errors.New("frame_check.probe_timeout_seconds must be positive")
	}
	if c.FrameCheck.MinWidth <= 0 || c.FrameCheck.MinHeight <= 0 {
		return errors.New("frame_check.min_width and min_height must be positive")
	}
	return nil
}
