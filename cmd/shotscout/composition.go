package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shotscout/internal/config"
	"shotscout/internal/curator"
	"shotscout/internal/director"
	"shotscout/internal/framecheck"
	"shotscout/internal/guardrail"
	"shotscout/internal/logging"
	"shotscout/internal/manifest"
	"shotscout/internal/pipeline"
	"shotscout/internal/provider"
	"shotscout/internal/provider/archiveorg"
	"shotscout/internal/provider/europeana"
	"shotscout/internal/provider/wikimedia"
	"shotscout/internal/relevance"
	"shotscout/internal/resolver"
	"shotscout/internal/runstore"
	"shotscout/internal/safetypack"
	"shotscout/internal/searchcache"
)

// buildProviders assembles the enabled search adapters. An empty slice is
// legal: the run proceeds and every scene falls back to the safety pack.
func buildProviders(cfg *config.Config) ([]provider.Provider, error) {
	var providers []provider.Provider
	if cfg.ArchiveOrg.Enabled {
		client, err := archiveorg.New(cfg.ArchiveOrg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("archive.org adapter: %w", err)
		}
		providers = append(providers, client)
	}
	if cfg.Wikimedia.Enabled {
		client, err := wikimedia.New(cfg.Wikimedia.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("wikimedia adapter: %w", err)
		}
		providers = append(providers, client)
	}
	if cfg.Europeana.Enabled && strings.TrimSpace(cfg.Europeana.APIKey) != "" {
		client, err := europeana.New(cfg.Europeana.APIKey, cfg.Europeana.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("europeana adapter: %w", err)
		}
		providers = append(providers, client)
	}
	return providers, nil
}

// buildRunner wires the full pipeline from config. The returned cleanup
// closes the run history store and must be called after the run.
func buildRunner(cfg *config.Config, planSource string, logger *slog.Logger) (*pipeline.Runner, func(), error) {
	providers, err := buildProviders(cfg)
	if err != nil {
		return nil, nil, err
	}

	cache, err := searchcache.NewStore(cfg.Paths.CacheDir, time.Duration(cfg.Search.CacheMaxAgeHours)*time.Hour, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("search cache: %w", err)
	}

	res := resolver.New(providers, cache, resolver.Options{
		MaxResultsPerQuery: cfg.Search.MaxResultsPerQuery,
		Throttle:           time.Duration(cfg.Search.ThrottleMillis) * time.Millisecond,
		MaxConcurrent:      cfg.Search.MaxConcurrent,
		RequestTimeout:     time.Duration(cfg.Search.RequestTimeout) * time.Second,
	}, logger)

	var probe framecheck.MediaProbe
	if cfg.FrameCheck.Enabled {
		probe = framecheck.NewFFProbe(
			cfg.FrameCheck.FFprobeBinary,
			cfg.FrameCheck.FFmpegBinary,
			time.Duration(cfg.FrameCheck.ProbeTimeoutSeconds)*time.Second,
		)
	}
	checker := framecheck.New(probe, framecheck.Options{
		Enabled:   cfg.FrameCheck.Enabled,
		MinWidth:  cfg.FrameCheck.MinWidth,
		MinHeight: cfg.FrameCheck.MinHeight,
	}, logger)

	pool, err := safetypack.ScanDir(cfg.Paths.FallbackDir)
	if err != nil {
		return nil, nil, fmt.Errorf("fallback pool: %w", err)
	}

	// A broken history store downgrades to an unrecorded run.
	runs, err := runstore.Open(cfg.Paths.RunDBPath)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "runstore_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in history"))
		runs = nil
	}
	cleanup := func() {
		if runs != nil {
			_ = runs.Close()
		}
	}

	limits := director.DefaultLimits()
	if cfg.Guardrail.MaxQueries > 0 {
		limits.MaxQueries = cfg.Guardrail.MaxQueries
	}

	runner := pipeline.New(pipeline.Config{
		Sanitizer: guardrail.NewSanitizer(guardrail.DefaultRules(), cfg.Guardrail.RepairAttempts, cfg.Guardrail.MinValidQueries, logger),
		Limits:    limits,
		Resolver:  res,
		Policy: relevance.Policy{
			WeakOverlapMin:  cfg.Relevance.WeakOverlapMin,
			TopicValidation: cfg.Relevance.TopicValidation,
			TopicSimilarity: cfg.Relevance.TopicSimilarity,
		},
		Checker:    checker,
		Curator:    curator.New(logger),
		Manifest:   manifest.NewBuilder(pool, logger),
		Runs:       runs,
		PlanSource: planSource,
		Logger:     logger,
	})
	return runner, cleanup, nil
}
