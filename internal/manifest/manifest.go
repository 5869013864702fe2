package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"shotscout/internal/curator"
	"shotscout/internal/director"
	"shotscout/internal/guardrail"
	"shotscout/internal/logging"
	"shotscout/internal/safetypack"
	"shotscout/internal/shotplan"
)

// Priority tags, in descending order of preference at render time.
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
	PriorityTexture   = "texture"
	PriorityFallback  = "fallback"
)

// maxTexturePerScene caps affinity picks so broadly matching assets do not
// flood every scene.
const maxTexturePerScene = 2

// Entry is one asset assigned to a scene. Remote assets carry an item id
// and URL; fallback assets carry a local path.
type Entry struct {
	ArchiveItemID string `json:"archive_item_id,omitempty"`
	AssetURL      string `json:"asset_url,omitempty"`
	LocalPath     string `json:"local_path,omitempty"`
	MediaType     string `json:"media_type"`
	Source        string `json:"source"`
	Priority      string `json:"priority"`
	VisualType    string `json:"visual_type,omitempty"`
	GlobalRank    int    `json:"global_rank,omitempty"`
}

// ScenePool is the asset list for one scene.
type ScenePool struct {
	SceneID string  `json:"scene_id"`
	Entries []Entry `json:"entries"`
}

// SourcePack is the manifest consumed by the renderer.
type SourcePack struct {
	EpisodeTopic string      `json:"episode_topic"`
	GeneratedAt  time.Time   `json:"generated_at"`
	Scenes       []ScenePool `json:"scenes"`
	FallbackUsed int         `json:"fallback_used"`
}

// Builder assembles source packs.
type Builder struct {
	pool   *safetypack.Pool
	logger *slog.Logger
}

// NewBuilder wires the fallback pool into the assembler.
func NewBuilder(pool *safetypack.Pool, logger *slog.Logger) *Builder {
	return &Builder{
		pool:   pool,
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

// Build assembles the per-scene pools. Scenes are processed in plan order;
// per scene the recommended assets come first by global rank, the top one
// tagged primary. Scenes demanding a deficit visual type, or ending up
// empty, are filled from the safety pack.
func (b *Builder) Build(plan *shotplan.Plan, assets []curator.Asset, deficits []curator.Deficit) SourcePack {
	deficitTypes := make(map[string]bool, len(deficits))
	for _, d := range deficits {
		deficitTypes[d.VisualType] = true
	}

	byScene := make(map[string][]curator.Asset)
	for _, asset := range assets {
		for _, sceneID := range asset.IntendedScenes {
			byScene[sceneID] = append(byScene[sceneID], asset)
		}
	}

	pack := SourcePack{
		EpisodeTopic: plan.EpisodeTopic,
		GeneratedAt:  time.Now().UTC(),
	}
	for _, scene := range plan.SortedScenes() {
		pool := b.buildScene(scene, byScene[scene.SceneID], assets, deficitTypes)
		pack.FallbackUsed += countFallback(pool.Entries)
		pack.Scenes = append(pack.Scenes, pool)
	}
	return pack
}

func (b *Builder) buildScene(scene shotplan.Scene, recommended, all []curator.Asset, deficitTypes map[string]bool) ScenePool {
	pool := ScenePool{SceneID: scene.SceneID}
	used := make(map[string]bool)

	sort.SliceStable(recommended, func(i, j int) bool {
		if recommended[i].GlobalRank != recommended[j].GlobalRank {
			return recommended[i].GlobalRank < recommended[j].GlobalRank
		}
		return recommended[i].Fingerprint < recommended[j].Fingerprint
	})
	for i, asset := range recommended {
		if used[asset.Fingerprint] {
			continue
		}
		used[asset.Fingerprint] = true
		priority := PrioritySecondary
		if i == 0 {
			priority = PriorityPrimary
		}
		pool.Entries = append(pool.Entries, assetEntry(asset, priority))
	}

	// Affinity fill: assets of a visual type this scene's shot strategy
	// asks for, even when the director did not route their query here.
	wanted := sceneVisualTypes(scene)
	textures := 0
	for _, asset := range all {
		if textures >= maxTexturePerScene {
			break
		}
		if used[asset.Fingerprint] || asset.VisualType == "" || !wanted[asset.VisualType] {
			continue
		}
		used[asset.Fingerprint] = true
		pool.Entries = append(pool.Entries, assetEntry(asset, PriorityTexture))
		textures++
	}

	needsFallback := len(pool.Entries) == 0
	for visualType := range wanted {
		if deficitTypes[visualType] && !poolHasType(pool.Entries, visualType) {
			needsFallback = true
		}
	}
	if needsFallback {
		pool.Entries = append(pool.Entries, b.fallbackEntries(scene)...)
	}
	return pool
}

func (b *Builder) fallbackEntries(scene shotplan.Scene) []Entry {
	blockIDs := scene.NarrationBlockIDs
	if len(blockIDs) == 0 {
		blockIDs = []string{""}
	}
	var entries []Entry
	seen := make(map[string]bool)
	for _, blockID := range blockIDs {
		pick := b.pool.Pick(scene.SceneID, blockID)
		if pick == nil {
			logging.WarnWithContext(b.logger, "fallback pool empty", "fallback_pool_empty",
				logging.String(logging.FieldSceneID, scene.SceneID),
				logging.String(logging.FieldImpact, "scene pool may stay empty"))
			return entries
		}
		if seen[pick.LocalPath] {
			continue
		}
		seen[pick.LocalPath] = true
		entries = append(entries, Entry{
			LocalPath: pick.LocalPath,
			MediaType: pick.MediaType,
			Source:    "local",
			Priority:  PriorityFallback,
		})
	}
	return entries
}

// WriteFile persists the pack as indented JSON.
func WriteFile(pack SourcePack, path string) error {
	data, err := json.MarshalIndent(pack, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal source pack: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write source pack: %w", err)
	}
	return nil
}

func assetEntry(asset curator.Asset, priority string) Entry {
	return Entry{
		ArchiveItemID: asset.ItemID,
		AssetURL:      asset.URL,
		MediaType:     asset.MediaType,
		Source:        asset.Source,
		Priority:      priority,
		VisualType:    asset.VisualType,
		GlobalRank:    asset.GlobalRank,
	}
}

func sceneVisualTypes(scene shotplan.Scene) map[string]bool {
	wanted := make(map[string]bool)
	for _, shotType := range scene.ShotStrategy.ShotTypes {
		visualType := director.ClassifyVisualType(guardrail.Query{ShotType: shotType})
		if visualType != director.VisualOther {
			wanted[visualType] = true
		}
	}
	return wanted
}

func poolHasType(entries []Entry, visualType string) bool {
	for _, entry := range entries {
		if entry.VisualType == visualType {
			return true
		}
	}
	return false
}

func countFallback(entries []Entry) int {
	count := 0
	for _, entry := range entries {
		if entry.Priority == PriorityFallback {
			count++
		}
	}
	return count
}
