package resolver

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"shotscout/internal/director"
	"shotscout/internal/logging"
	"shotscout/internal/provider"
	"shotscout/internal/searchcache"
)

// Options tunes the federated search behavior.
type Options struct {
	MaxResultsPerQuery int
	Throttle           time.Duration
	MaxConcurrent      int
	RequestTimeout     time.Duration
}

// QueryResult carries the raw candidates resolved for one strategic query.
type QueryResult struct {
	QueryID        string               `json:"query_id"`
	Query          string               `json:"query"`
	Candidates     []provider.Candidate `json:"results"`
	ProviderErrors map[string]string    `json:"provider_errors,omitempty"`
	CacheHits      int                  `json:"cache_hits"`
}

// Summary aggregates counters across all queries of a run.
type Summary struct {
	TotalQueries     int `json:"total_queries"`
	TotalCandidates  int `json:"total_candidates"`
	CacheHits        int `json:"cache_hits"`
	ProviderFailures int `json:"provider_failures"`
	EmptyQueries     int `json:"empty_queries"`
}

// Resolver federates search across providers behind a shared cache store.
type Resolver struct {
	providers []provider.Provider
	cache     *searchcache.Store
	opts      Options
	logger    *slog.Logger
	limiters  map[string]*limiter
}

// New composes the resolver. The cache store's lifecycle is owned by the
// caller and scoped to one pipeline run.
func New(providers []provider.Provider, cache *searchcache.Store, opts Options, logger *slog.Logger) *Resolver {
	if opts.MaxResultsPerQuery <= 0 {
		opts.MaxResultsPerQuery = 12
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	limiters := make(map[string]*limiter, len(providers))
	for _, p := range providers {
		limiters[p.Name()] = newLimiter(opts.Throttle)
	}
	return &Resolver{
		providers: providers,
		cache:     cache,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "resolver"),
		limiters:  limiters,
	}
}

// Resolve runs every strategic query against every provider. Queries run on
// a bounded worker pool; cancellation is checked between provider calls, and
// each call carries its own timeout. The only error returned is the context's.
func (r *Resolver) Resolve(ctx context.Context, queries []director.StrategicQuery) ([]QueryResult, Summary, error) {
	results := make([]QueryResult, len(queries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.MaxConcurrent)

	for i, sq := range queries {
		i, sq := i, sq
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = r.resolveQuery(groupCtx, sq)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{TotalQueries: len(queries)}
	for _, result := range results {
		summary.TotalCandidates += len(result.Candidates)
		summary.CacheHits += result.CacheHits
		summary.ProviderFailures += len(result.ProviderErrors)
		if len(result.Candidates) == 0 {
			summary.EmptyQueries++
		}
	}
	return results, summary, nil
}

func (r *Resolver) resolveQuery(ctx context.Context, sq director.StrategicQuery) QueryResult {
	result := QueryResult{QueryID: sq.QueryID, Query: sq.Query}
	mediaType := MediaTypeFor(sq.VisualType)

	for _, p := range r.providers {
		if ctx.Err() != nil {
			break
		}
		candidates, fromCache, err := r.searchProvider(ctx, p, sq.Query, mediaType)
		if err != nil {
			logging.WarnWithContext(r.logger, "provider search failed", "provider_search_failed",
				logging.String(logging.FieldProvider, p.Name()),
				logging.String(logging.FieldQueryID, sq.QueryID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "query continues with remaining providers"))
			if result.ProviderErrors == nil {
				result.ProviderErrors = make(map[string]string)
			}
			result.ProviderErrors[p.Name()] = err.Error()
			continue
		}
		if fromCache {
			result.CacheHits++
		}
		for j := range candidates {
			candidates[j].QueryID = sq.QueryID
		}
		result.Candidates = append(result.Candidates, candidates...)
	}

	// Stable order regardless of provider registration: by source, then rank.
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Rank < b.Rank
	})
	return result
}

func (r *Resolver) searchProvider(ctx context.Context, p provider.Provider, query, mediaType string) ([]provider.Candidate, bool, error) {
	key := searchcache.Key{Provider: p.Name(), MediaType: mediaType, Query: query}
	var cached []provider.Candidate
	if r.cache.Lookup(key, &cached) {
		return cached, true, nil
	}

	if lim := r.limiters[p.Name()]; lim != nil {
		if err := lim.wait(ctx); err != nil {
			return nil, false, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
	defer cancel()

	candidates, err := p.Search(callCtx, provider.Request{
		Query:      query,
		MediaType:  mediaType,
		MaxResults: r.opts.MaxResultsPerQuery,
	})
	if err != nil {
		return nil, false, err
	}

	if err := r.cache.Store(key, candidates); err != nil {
		r.logger.Debug("cache store failed", logging.Error(err), logging.String(logging.FieldProvider, p.Name()))
	}
	return candidates, false, nil
}

// MediaTypeFor maps a visual type to the provider-level media filter.
// Paper artifacts want stills; action-oriented types search all media.
func MediaTypeFor(visualType string) string {
	switch visualType {
	case director.VisualMap, director.VisualDocument, director.VisualPortrait:
		return provider.MediaImage
	default:
		return ""
	}
}
