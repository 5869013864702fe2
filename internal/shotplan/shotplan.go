package shotplan

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"shotscout/internal/services"
)

// ShotStrategy describes how a scene wants to be covered visually.
type ShotStrategy struct {
	ShotTypes        []string `json:"shot_types"`
	SourcePreference string   `json:"source_preference,omitempty"`
}

// Scene is one timed scene of the episode with its search intent.
type Scene struct {
	SceneID           string       `json:"scene_id"`
	StartSec          float64      `json:"start_sec"`
	EndSec            float64      `json:"end_sec"`
	NarrationBlockIDs []string     `json:"narration_block_ids,omitempty"`
	Narration         string       `json:"narration,omitempty"`
	Keywords          []string     `json:"keywords,omitempty"`
	SearchQueries     []string     `json:"search_queries,omitempty"`
	ShotStrategy      ShotStrategy `json:"shot_strategy"`
}

// Plan is the full shot plan for one episode.
type Plan struct {
	EpisodeTopic string  `json:"episode_topic"`
	Scenes       []Scene `json:"scenes"`
}

// Load reads and validates a shot plan from a JSON file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "shotplan", "load", "read plan file", err)
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, services.Wrap(services.ErrValidation, "shotplan", "load", "parse plan JSON", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate enforces the structural preconditions of the pipeline. These are
// the only conditions under which a resolution run aborts: a plan without a
// canonical episode topic or without scenes is a contract bug upstream, not
// a quality shortfall.
func (p *Plan) Validate() error {
	if p == nil {
		return services.Wrap(services.ErrValidation, "shotplan", "validate", "plan is nil", nil)
	}
	if strings.TrimSpace(p.EpisodeTopic) == "" {
		return services.Wrap(services.ErrValidation, "shotplan", "validate", "episode_topic is required", nil)
	}
	if len(p.Scenes) == 0 {
		return services.Wrap(services.ErrValidation, "shotplan", "validate", "plan has no scenes", nil)
	}
	seen := make(map[string]bool, len(p.Scenes))
	for i, scene := range p.Scenes {
		id := strings.TrimSpace(scene.SceneID)
		if id == "" {
			return services.Wrap(services.ErrValidation, "shotplan", "validate", fmt.Sprintf("scene %d has empty scene_id", i), nil)
		}
		if seen[id] {
			return services.Wrap(services.ErrValidation, "shotplan", "validate", fmt.Sprintf("duplicate scene_id %q", id), nil)
		}
		seen[id] = true
		if scene.EndSec < scene.StartSec {
			return services.Wrap(services.ErrValidation, "shotplan", "validate", fmt.Sprintf("scene %q ends before it starts", id), nil)
		}
	}
	return nil
}

// SortedScenes returns scenes ordered by start time, then scene id. The
// receiver is not modified.
func (p *Plan) SortedScenes() []Scene {
	scenes := make([]Scene, len(p.Scenes))
	copy(scenes, p.Scenes)
	sort.SliceStable(scenes, func(i, j int) bool {
		if scenes[i].StartSec != scenes[j].StartSec {
			return scenes[i].StartSec < scenes[j].StartSec
		}
		return scenes[i].SceneID < scenes[j].SceneID
	})
	return scenes
}

// Scene returns the scene with the given id, if present.
func (p *Plan) Scene(id string) (Scene, bool) {
	for _, scene := range p.Scenes {
		if scene.SceneID == id {
			return scene, true
		}
	}
	return Scene{}, false
}
