package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shotscout/internal/curator"
	"shotscout/internal/director"
	"shotscout/internal/framecheck"
	"shotscout/internal/guardrail"
	"shotscout/internal/logging"
	"shotscout/internal/manifest"
	"shotscout/internal/provider"
	"shotscout/internal/relevance"
	"shotscout/internal/resolver"
	"shotscout/internal/runstore"
	"shotscout/internal/safetypack"
	"shotscout/internal/searchcache"
	"shotscout/internal/services"
	"shotscout/internal/shotplan"
)

type stubProvider struct {
	name       string
	candidates []provider.Candidate
	err        error
	calls      int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, req provider.Request) ([]provider.Candidate, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]provider.Candidate, len(p.candidates))
	copy(out, p.candidates)
	return out, nil
}

func testPlan() *shotplan.Plan {
	return &shotplan.Plan{
		EpisodeTopic: "Napoleon's invasion of Russia",
		Scenes: []shotplan.Scene{
			{
				SceneID:           "scene_01",
				StartSec:          0,
				EndSec:            10,
				NarrationBlockIDs: []string{"block_01"},
				Narration:         "Napoleon waited in ruined Moscow in 1812.",
				Keywords:          []string{"Napoleon", "Moscow", "1812"},
				SearchQueries:     []string{"Napoleon Moscow 1812 footage"},
				ShotStrategy:      shotplan.ShotStrategy{ShotTypes: []string{"action"}},
			},
			{
				SceneID:           "scene_02",
				StartSec:          10,
				EndSec:            20,
				NarrationBlockIDs: []string{"block_02"},
				Narration:         "The army retreated west.",
				SearchQueries:     []string{"epic gameplay compilation"},
				ShotStrategy:      shotplan.ShotStrategy{ShotTypes: []string{"civilian"}},
			},
		},
	}
}

func newTestRunner(t *testing.T, p provider.Provider, runs *runstore.Store) *Runner {
	t.Helper()
	logger := logging.NewNop()
	cache, err := searchcache.NewStore(t.TempDir(), time.Hour, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	pool := safetypack.NewPool([]safetypack.Asset{
		{LocalPath: "fallback/clouds.mp4", MediaType: "video"},
		{LocalPath: "fallback/parchment.jpg", MediaType: "image"},
	})
	return New(Config{
		Sanitizer:  guardrail.NewSanitizer(guardrail.DefaultRules(), 2, 1, logger),
		Limits:     director.DefaultLimits(),
		Resolver:   resolver.New([]provider.Provider{p}, cache, resolver.Options{}, logger),
		Policy:     relevance.DefaultPolicy(),
		Checker:    framecheck.New(nil, framecheck.Options{Enabled: false}, logger),
		Curator:    curator.New(logger),
		Manifest:   manifest.NewBuilder(pool, logger),
		Runs:       runs,
		PlanSource: "compiled",
		Logger:     logger,
	})
}

func TestRunEndToEnd(t *testing.T) {
	p := &stubProvider{
		name: provider.SourceArchiveOrg,
		candidates: []provider.Candidate{{
			Source:    provider.SourceArchiveOrg,
			ItemID:    "napoleon-1812",
			URL:       "https://archive.org/details/napoleon-1812",
			MediaType: provider.MediaVideo,
			Thumbnail: "https://archive.org/services/img/napoleon-1812",
			Title:     "Napoleon Moscow 1812 documentary footage",
			Rank:      1,
		}},
	}
	runner := newTestRunner(t, p, nil)

	pack, report, err := runner.Run(context.Background(), testPlan())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pack.Scenes) != 2 {
		t.Fatalf("expected 2 scene pools, got %d", len(pack.Scenes))
	}

	first := pack.Scenes[0]
	if first.SceneID != "scene_01" || len(first.Entries) == 0 {
		t.Fatalf("scene_01 pool missing entries: %+v", first)
	}
	if first.Entries[0].Priority != manifest.PriorityPrimary || first.Entries[0].ArchiveItemID != "napoleon-1812" {
		t.Fatalf("expected curated primary entry, got %+v", first.Entries[0])
	}

	// scene_02 produced no valid query and wants a visual type the curated
	// asset cannot serve, so the safety pack fills it.
	second := pack.Scenes[1]
	if len(second.Entries) == 0 {
		t.Fatal("scene_02 must not be left empty")
	}
	if second.Entries[0].Priority != manifest.PriorityFallback || second.Entries[0].LocalPath == "" {
		t.Fatalf("expected fallback entry, got %+v", second.Entries[0])
	}
	if pack.FallbackUsed == 0 {
		t.Fatal("fallback usage not counted")
	}

	if report.EpisodeTopic != "Napoleon's invasion of Russia" || report.PlanSource != "compiled" {
		t.Fatalf("report header wrong: %+v", report)
	}
	if len(report.LowCoverageScenes) != 1 || report.LowCoverageScenes[0] != "scene_02" {
		t.Fatalf("expected scene_02 flagged low coverage, got %v", report.LowCoverageScenes)
	}
	counts := report.Counts
	if counts.RawQueries != 2 || counts.ValidQueries != 1 || counts.StrategicQueries != 1 {
		t.Fatalf("query counts wrong: %+v", counts)
	}
	if counts.Candidates != 1 || counts.GateAccepted != 1 || counts.GateRejected != 0 {
		t.Fatalf("gate counts wrong: %+v", counts)
	}
	if counts.FrameUnverified != 1 || counts.Curated != 1 {
		t.Fatalf("downstream counts wrong: %+v", counts)
	}
}

func TestRunRejectsInvalidPlan(t *testing.T) {
	runner := newTestRunner(t, &stubProvider{name: provider.SourceArchiveOrg}, nil)
	_, _, err := runner.Run(context.Background(), &shotplan.Plan{Scenes: []shotplan.Scene{{SceneID: "scene_01"}}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunSurvivesProviderFailure(t *testing.T) {
	p := &stubProvider{name: provider.SourceArchiveOrg, err: errors.New("upstream down")}
	runner := newTestRunner(t, p, nil)

	pack, report, err := runner.Run(context.Background(), testPlan())
	if err != nil {
		t.Fatalf("Run must not fail on provider errors: %v", err)
	}
	if report.ProviderFailures == 0 {
		t.Fatal("provider failure not reported")
	}
	if report.Counts.Candidates != 0 {
		t.Fatalf("expected zero candidates, got %d", report.Counts.Candidates)
	}
	for _, scene := range pack.Scenes {
		if len(scene.Entries) == 0 {
			t.Fatalf("scene %s left empty despite fallback pool", scene.SceneID)
		}
		if scene.Entries[0].Priority != manifest.PriorityFallback {
			t.Fatalf("scene %s expected fallback entries, got %+v", scene.SceneID, scene.Entries[0])
		}
	}
}

func TestRunGateFiltersUnrelatedCandidates(t *testing.T) {
	p := &stubProvider{
		name: provider.SourceArchiveOrg,
		candidates: []provider.Candidate{{
			Source:    provider.SourceArchiveOrg,
			ItemID:    "castle-speedrun",
			URL:       "https://archive.org/details/castle-speedrun",
			MediaType: provider.MediaVideo,
			Title:     "Minecraft castle speedrun highlights",
			Rank:      1,
		}},
	}
	runner := newTestRunner(t, p, nil)

	_, report, err := runner.Run(context.Background(), testPlan())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Counts.GateRejected != 1 || report.Counts.Curated != 0 {
		t.Fatalf("expected single gate rejection, got %+v", report.Counts)
	}
	if report.GateRejections["no_strong_anchor_match"] != 1 {
		t.Fatalf("rejection reason not recorded: %v", report.GateRejections)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	runner := newTestRunner(t, &stubProvider{name: provider.SourceArchiveOrg}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := runner.Run(ctx, testPlan())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	store, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	p := &stubProvider{
		name: provider.SourceArchiveOrg,
		candidates: []provider.Candidate{{
			Source:    provider.SourceArchiveOrg,
			ItemID:    "napoleon-1812",
			URL:       "https://archive.org/details/napoleon-1812",
			MediaType: provider.MediaVideo,
			Title:     "Napoleon Moscow 1812 documentary footage",
			Rank:      1,
		}},
	}
	runner := newTestRunner(t, p, store)

	_, report, err := runner.Run(context.Background(), testPlan())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("run id missing from report")
	}

	run, err := store.Get(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run == nil {
		t.Fatal("run not persisted")
	}
	if run.FinishedAt == nil {
		t.Fatal("run not marked finished")
	}
	if run.CuratedCount != report.Counts.Curated || run.FallbackCount != report.Counts.FallbackEntries {
		t.Fatalf("persisted counts diverge: %+v vs %+v", run, report.Counts)
	}
	if run.QueryCount != report.Counts.StrategicQueries {
		t.Fatalf("query count not persisted: %d vs %d", run.QueryCount, report.Counts.StrategicQueries)
	}
}
