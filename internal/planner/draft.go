package planner

import (
	"fmt"
	"strings"

	"shotscout/internal/shotplan"
)

// Draft is the provider's proposed shot plan, a looser shape than the
// canonical plan so a partially useful draft still converts.
type Draft struct {
	Scenes []DraftScene `json:"scenes"`
}

// DraftScene is one proposed scene.
type DraftScene struct {
	Narration     string   `json:"narration"`
	Keywords      []string `json:"keywords"`
	SearchQueries []string `json:"search_queries"`
	ShotTypes     []string `json:"shot_types"`
	DurationSec   float64  `json:"duration_sec"`
}

// defaultSceneDurationSec is used when the draft omits scene durations.
const defaultSceneDurationSec = 10.0

// draftToPlan converts a draft into a canonical plan. Scene and block ids
// are assigned positionally; the result still has to pass plan validation
// before it is trusted.
func draftToPlan(topic string, draft *Draft) (*shotplan.Plan, error) {
	if draft == nil || len(draft.Scenes) == 0 {
		return nil, fmt.Errorf("draft has no scenes")
	}
	plan := &shotplan.Plan{EpisodeTopic: strings.TrimSpace(topic)}
	cursor := 0.0
	for i, scene := range draft.Scenes {
		narration := strings.TrimSpace(scene.Narration)
		if narration == "" {
			return nil, fmt.Errorf("draft scene %d has empty narration", i+1)
		}
		duration := scene.DurationSec
		if duration <= 0 {
			duration = defaultSceneDurationSec
		}
		shotTypes := scene.ShotTypes
		if len(shotTypes) == 0 {
			shotTypes = []string{"action"}
		}
		plan.Scenes = append(plan.Scenes, shotplan.Scene{
			SceneID:           sceneID(i),
			StartSec:          cursor,
			EndSec:            cursor + duration,
			NarrationBlockIDs: []string{blockID(i)},
			Narration:         narration,
			Keywords:          trimAll(scene.Keywords),
			SearchQueries:     trimAll(scene.SearchQueries),
			ShotStrategy:      shotplan.ShotStrategy{ShotTypes: trimAll(shotTypes)},
		})
		cursor += duration
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("draft plan invalid: %w", err)
	}
	return plan, nil
}

func sceneID(index int) string { return fmt.Sprintf("scene_%02d", index+1) }
func blockID(index int) string { return fmt.Sprintf("block_%02d", index+1) }

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
