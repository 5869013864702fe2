package planner

import (
	"context"
	"errors"
	"testing"

	"shotscout/internal/logging"
)

type fakeDraftProvider struct {
	draft *Draft
	err   error
}

func (f *fakeDraftProvider) Draft(ctx context.Context, topic, narration string) (*Draft, error) {
	return f.draft, f.err
}

func TestBuildPlanNilProviderCompiles(t *testing.T) {
	plan, source := BuildPlan(context.Background(), nil, "Nikola Tesla", testNarration, logging.NewNop())
	if source != "compiled" {
		t.Fatalf("expected compiled source, got %q", source)
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("compiled plan invalid: %v", err)
	}
}

func TestBuildPlanFailingProviderCompiles(t *testing.T) {
	provider := &fakeDraftProvider{err: errors.New("upstream down")}
	plan, source := BuildPlan(context.Background(), provider, "Nikola Tesla", testNarration, logging.NewNop())
	if source != "compiled" {
		t.Fatalf("provider failure must fall back, got %q", source)
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("fallback plan invalid: %v", err)
	}
}

func TestBuildPlanInvalidDraftCompiles(t *testing.T) {
	provider := &fakeDraftProvider{draft: &Draft{}}
	_, source := BuildPlan(context.Background(), provider, "Nikola Tesla", testNarration, logging.NewNop())
	if source != "compiled" {
		t.Fatalf("empty draft must fall back, got %q", source)
	}
}

func TestBuildPlanUsesValidDraft(t *testing.T) {
	provider := &fakeDraftProvider{draft: &Draft{
		Scenes: []DraftScene{
			{
				Narration:     "Tesla demonstrates wireless power.",
				Keywords:      []string{"tesla", "wireless"},
				SearchQueries: []string{"Nikola Tesla laboratory footage"},
				ShotTypes:     []string{"action"},
				DurationSec:   8,
			},
			{
				Narration:     "The Wardenclyffe tower rises.",
				SearchQueries: []string{"Wardenclyffe tower photograph"},
			},
		},
	}}
	plan, source := BuildPlan(context.Background(), provider, "Nikola Tesla", testNarration, logging.NewNop())
	if source != "draft" {
		t.Fatalf("expected draft source, got %q", source)
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("draft plan invalid: %v", err)
	}
	if plan.Scenes[0].SceneID != "scene_01" || plan.Scenes[1].SceneID != "scene_02" {
		t.Fatalf("scene ids must be positional, got %q %q", plan.Scenes[0].SceneID, plan.Scenes[1].SceneID)
	}
	if plan.Scenes[1].StartSec != 8 {
		t.Fatalf("timing must accumulate, got start %v", plan.Scenes[1].StartSec)
	}
	if len(plan.Scenes[1].ShotStrategy.ShotTypes) == 0 {
		t.Fatal("missing shot types must default")
	}
}
