package runstore

import (
	"context"
	"path/filepath"
	"testing"

	"shotscout/internal/director"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginFinishRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.Begin(ctx, "Napoleon's invasion of Russia", "compiled", 4)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run id must be assigned")
	}

	run.CandidateCount = 42
	run.CuratedCount = 17
	run.FallbackCount = 1
	run.WarningCount = 2
	queries := []director.StrategicQuery{
		{QueryID: "abc", Query: "Napoleon 1812 footage", Priority: 5, VisualType: director.VisualOther},
	}
	report := map[string]any{"warnings": []string{"map share high"}}
	if err := store.Finish(ctx, run, report, queries); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected run")
	}
	if got.EpisodeTopic != "Napoleon's invasion of Russia" || got.PlanSource != "compiled" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("finished run must have a timestamp")
	}
	if got.CandidateCount != 42 || got.CuratedCount != 17 || got.QueryCount != 1 {
		t.Fatalf("counts not persisted: %+v", got)
	}
	if len(got.Queries) != 1 || got.Queries[0].QueryID != "abc" {
		t.Fatalf("queries not persisted: %+v", got.Queries)
	}
	if got.ReportJSON == "" {
		t.Fatal("report json not persisted")
	}
}

func TestGetMissingRunIsNil(t *testing.T) {
	store := openTestStore(t)
	got, err := store.Get(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing run, got %+v", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, topic := range []string{"first", "second", "third"} {
		if _, err := store.Begin(ctx, topic, "compiled", 1); err != nil {
			t.Fatalf("Begin %s: %v", topic, err)
		}
	}
	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Fatalf("runs not newest-first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run, err := store.Begin(context.Background(), "topic", "draft", 1)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.EpisodeTopic != "topic" {
		t.Fatalf("data lost across reopen: %+v", got)
	}
}
