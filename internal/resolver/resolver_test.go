package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"shotscout/internal/director"
	"shotscout/internal/logging"
	"shotscout/internal/provider"
	"shotscout/internal/searchcache"
)

type fakeProvider struct {
	name    string
	err     error
	calls   int
	results []provider.Candidate
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, req provider.Request) ([]provider.Candidate, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]provider.Candidate, len(f.results))
	copy(out, f.results)
	return out, nil
}

func newTestResolver(t *testing.T, providers []provider.Provider, opts Options) *Resolver {
	t.Helper()
	cache, err := searchcache.NewStore(t.TempDir(), 0, logging.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return New(providers, cache, opts, logging.NewNop())
}

func testQueries() []director.StrategicQuery {
	return []director.StrategicQuery{
		{QueryID: "q1", Query: "Napoleon Moscow 1812 archival footage", VisualType: director.VisualOther},
		{QueryID: "q2", Query: "1812 campaign map", VisualType: director.VisualMap},
	}
}

func TestResolvePartialProviderFailure(t *testing.T) {
	good := &fakeProvider{
		name: "archive.org",
		results: []provider.Candidate{
			{Source: provider.SourceArchiveOrg, ItemID: "a", Rank: 1},
			{Source: provider.SourceArchiveOrg, ItemID: "b", Rank: 2},
		},
	}
	bad := &fakeProvider{name: "europeana", err: errors.New("upstream 503")}

	r := newTestResolver(t, []provider.Provider{good, bad}, Options{})
	results, summary, err := r.Resolve(context.Background(), testQueries())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 query results, got %d", len(results))
	}
	for _, result := range results {
		if len(result.Candidates) != 2 {
			t.Fatalf("query %s: expected surviving provider's candidates, got %d", result.QueryID, len(result.Candidates))
		}
		if result.ProviderErrors["europeana"] == "" {
			t.Fatalf("query %s: failing provider must be recorded", result.QueryID)
		}
	}
	if summary.ProviderFailures != 2 {
		t.Fatalf("expected 2 provider failures, got %d", summary.ProviderFailures)
	}
	if summary.TotalCandidates != 4 {
		t.Fatalf("expected 4 candidates, got %d", summary.TotalCandidates)
	}
}

func TestResolveAllProvidersFailYieldsEmptyQuery(t *testing.T) {
	bad := &fakeProvider{name: "wikimedia", err: errors.New("timeout")}
	r := newTestResolver(t, []provider.Provider{bad}, Options{})

	results, summary, err := r.Resolve(context.Background(), testQueries()[:1])
	if err != nil {
		t.Fatalf("Resolve must not fail on provider errors: %v", err)
	}
	if len(results[0].Candidates) != 0 {
		t.Fatalf("expected zero candidates, got %d", len(results[0].Candidates))
	}
	if summary.EmptyQueries != 1 {
		t.Fatalf("expected 1 empty query, got %d", summary.EmptyQueries)
	}
}

func TestResolveCachesSecondPass(t *testing.T) {
	p := &fakeProvider{
		name:    "archive.org",
		results: []provider.Candidate{{Source: provider.SourceArchiveOrg, ItemID: "a"}},
	}
	r := newTestResolver(t, []provider.Provider{p}, Options{})
	queries := testQueries()[:1]

	if _, _, err := r.Resolve(context.Background(), queries); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	results, summary, err := r.Resolve(context.Background(), queries)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", p.calls)
	}
	if summary.CacheHits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", summary.CacheHits)
	}
	if results[0].Candidates[0].QueryID != "q1" {
		t.Fatalf("cached candidates must be re-tagged with the query id, got %q", results[0].Candidates[0].QueryID)
	}
}

func TestResolveTagsAndOrdersCandidates(t *testing.T) {
	zebra := &fakeProvider{
		name:    "wikimedia",
		results: []provider.Candidate{{Source: provider.SourceWikimedia, ItemID: "z", Rank: 1}},
	}
	alpha := &fakeProvider{
		name: "archive.org",
		results: []provider.Candidate{
			{Source: provider.SourceArchiveOrg, ItemID: "a2", Rank: 2},
			{Source: provider.SourceArchiveOrg, ItemID: "a1", Rank: 1},
		},
	}
	// Register providers out of source order to prove ordering is derived
	// from the candidates, not from registration.
	r := newTestResolver(t, []provider.Provider{zebra, alpha}, Options{})
	results, _, err := r.Resolve(context.Background(), testQueries()[:1])
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := results[0].Candidates
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	wantOrder := []string{"a1", "a2", "z"}
	for i, want := range wantOrder {
		if got[i].ItemID != want {
			t.Fatalf("position %d: want %q, got %q", i, want, got[i].ItemID)
		}
		if got[i].QueryID != "q1" {
			t.Fatalf("candidate %q missing query id", got[i].ItemID)
		}
	}
}

func TestResolveHonorsCancellation(t *testing.T) {
	p := &fakeProvider{name: "archive.org"}
	r := newTestResolver(t, []provider.Provider{p}, Options{Throttle: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := r.Resolve(ctx, testQueries())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMediaTypeFor(t *testing.T) {
	cases := []struct {
		visualType string
		want       string
	}{
		{director.VisualMap, provider.MediaImage},
		{director.VisualDocument, provider.MediaImage},
		{director.VisualPortrait, provider.MediaImage},
		{director.VisualDestruction, ""},
		{director.VisualCivilian, ""},
		{director.VisualOther, ""},
	}
	for _, tc := range cases {
		if got := MediaTypeFor(tc.visualType); got != tc.want {
			t.Fatalf("MediaTypeFor(%q) = %q, want %q", tc.visualType, got, tc.want)
		}
	}
}
