package guardrail

import (
	"errors"
	"testing"

	"shotscout/internal/logging"
	"shotscout/internal/services"
	"shotscout/internal/shotplan"
)

func newTestSanitizer(t *testing.T) *Sanitizer {
	t.Helper()
	return NewSanitizer(DefaultRules(), 2, 1, logging.NewNop())
}

func napoleonContext() Context {
	return Context{
		BeatText:     "Napoleon waited in ruined Moscow in 1812.",
		EpisodeTopic: "Napoleon's invasion of Russia",
		Keywords:     []string{"napoleon", "moscow", "1812", "ruins", "documents"},
	}
}

func TestSanitizeAcceptsAnchoredQuery(t *testing.T) {
	s := newTestSanitizer(t)
	q, ok, reason := s.Sanitize("Napoleon 1812 retreat", napoleonContext())
	if !ok {
		t.Fatalf("expected acceptance, got reason %q", reason)
	}
	if len(q.Entities) == 0 || len(q.Years) == 0 {
		t.Fatalf("expected entity and year anchors, got %+v", q)
	}
}

func TestSanitizeRejectsBareYearWithoutRepairSources(t *testing.T) {
	s := newTestSanitizer(t)
	_, ok, reason := s.Sanitize("1812 winter conditions", Context{})
	if ok {
		t.Fatal("bare year must not satisfy the anchor requirement")
	}
	if reason != ReasonBareYear {
		t.Fatalf("expected %q, got %q", ReasonBareYear, reason)
	}
}

func TestSanitizeRepairsBareYearFromBeatText(t *testing.T) {
	s := newTestSanitizer(t)
	q, ok, reason := s.Sanitize("1812 winter conditions", napoleonContext())
	if !ok {
		t.Fatalf("expected repair to succeed, got reason %q", reason)
	}
	if !q.Repaired {
		t.Fatal("repaired query must be flagged")
	}
	if len(q.Entities) == 0 || q.Entities[0] != "Napoleon" {
		t.Fatalf("expected Napoleon injected from beat text, got %v", q.Entities)
	}
}

func TestRepairPriorityFallsBackToTopicThenKeywords(t *testing.T) {
	s := newTestSanitizer(t)

	topicOnly := Context{EpisodeTopic: "Tesla and the current wars"}
	q, ok, _ := s.Sanitize("1893 generator", topicOnly)
	if !ok || len(q.Entities) == 0 || q.Entities[0] != "Tesla" {
		t.Fatalf("expected topic anchor, got %+v ok=%v", q, ok)
	}

	keywordsOnly := Context{Keywords: []string{"1812", "kutuzov"}}
	q, ok, _ = s.Sanitize("1812 winter conditions", keywordsOnly)
	if !ok || len(q.Entities) == 0 || q.Entities[0] != "Kutuzov" {
		t.Fatalf("expected keyword anchor with restored casing, got %+v ok=%v", q, ok)
	}
}

func TestSanitizeRejectsNoiseTerms(t *testing.T) {
	s := newTestSanitizer(t)
	_, ok, reason := s.Sanitize("Napoleon total war gameplay", napoleonContext())
	if ok {
		t.Fatal("noise term must reject the query")
	}
	if reason != ReasonNoiseTerm {
		t.Fatalf("expected %q, got %q", ReasonNoiseTerm, reason)
	}
}

func TestAllowPhraseOverridesStoplist(t *testing.T) {
	s := newTestSanitizer(t)
	q, ok, reason := s.Sanitize("Olympic Games 1912 Stockholm", Context{})
	if !ok {
		t.Fatalf("allow-listed phrase must pass, got reason %q", reason)
	}
	found := false
	for _, entity := range q.Entities {
		if entity == "Games" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected allow phrase to preserve Games as entity, got %v", q.Entities)
	}
}

func TestMediaIntentRequiredByShotType(t *testing.T) {
	s := newTestSanitizer(t)

	sctx := napoleonContext()
	sctx.ShotType = "map"

	q, ok, reason := s.Sanitize("Napoleon Russia campaign 1812", sctx)
	if !ok {
		t.Fatalf("expected media repair to inject token, got reason %q", reason)
	}
	if !q.HasMediaToken("map") {
		t.Fatalf("expected map token injected, got %v", q.MediaTokens)
	}
}

func TestMediaTokenAcceptedAnywhereInQuery(t *testing.T) {
	s := newTestSanitizer(t)

	sctx := napoleonContext()
	sctx.ShotType = "map"

	// The required token follows another media-intent word; position must
	// not matter.
	q, ok, reason := s.Sanitize("Napoleon document 1812 map", sctx)
	if !ok {
		t.Fatalf("query containing required token rejected: %q", reason)
	}
	if q.Repaired {
		t.Fatal("query already satisfying the requirement must not be repaired")
	}
	if !q.HasMediaToken("map") {
		t.Fatalf("expected map among media tokens, got %v", q.MediaTokens)
	}
}

func TestMediaRepairConvergesPastEarlierToken(t *testing.T) {
	s := newTestSanitizer(t)

	sctx := napoleonContext()
	sctx.ShotType = "photo"

	// "photo" is media intent but not the token "photo" shots demand;
	// repair appends "photograph" and acceptance must see it.
	q, ok, reason := s.Sanitize("Napoleon photo 1812", sctx)
	if !ok {
		t.Fatalf("expected repair to converge, got reason %q", reason)
	}
	if !q.Repaired {
		t.Fatal("repaired query must be flagged")
	}
	if !q.HasMediaToken("photograph") {
		t.Fatalf("expected photograph appended, got %v", q.MediaTokens)
	}
}

func TestSanitizeSceneFatalWithoutTopic(t *testing.T) {
	s := newTestSanitizer(t)
	scene := shotplan.Scene{SceneID: "scene-1", SearchQueries: []string{"Napoleon 1812"}}
	_, err := s.SanitizeScene(scene, " ")
	if err == nil {
		t.Fatal("missing episode topic must be fatal")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestSanitizeSceneFlagsLowCoverage(t *testing.T) {
	s := NewSanitizer(DefaultRules(), 0, 2, logging.NewNop())
	scene := shotplan.Scene{
		SceneID:       "scene-1",
		SearchQueries: []string{"", "epic vintage footage vibe"},
	}
	result, err := s.SanitizeScene(scene, "Napoleon's invasion of Russia")
	if err != nil {
		t.Fatalf("low coverage must not be an error: %v", err)
	}
	if !result.LowCoverage {
		t.Fatal("expected low coverage flag")
	}
	if len(result.Diagnostics) != 2 {
		t.Fatalf("expected per-query diagnostics, got %d", len(result.Diagnostics))
	}
}

func TestSanitizeNeverReturnsUnanchoredQuerySilently(t *testing.T) {
	s := newTestSanitizer(t)
	inputs := []string{
		"", "vintage footage", "1812", "amazing epic visuals",
		"Napoleon Moscow 1812 documentary", "map of Europe",
	}
	for _, raw := range inputs {
		q, ok, reason := s.Sanitize(raw, Context{})
		if !ok {
			if reason == "" {
				t.Fatalf("rejection of %q must carry a reason", raw)
			}
			continue
		}
		if !q.HasAnchor() {
			t.Fatalf("accepted query %q lacks an anchor", q.Text)
		}
	}
}
