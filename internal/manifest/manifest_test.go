package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"shotscout/internal/curator"
	"shotscout/internal/director"
	"shotscout/internal/logging"
	"shotscout/internal/provider"
	"shotscout/internal/safetypack"
	"shotscout/internal/shotplan"
)

func testPool() *safetypack.Pool {
	return safetypack.NewPool([]safetypack.Asset{
		{LocalPath: "/pool/clouds.mp4", MediaType: provider.MediaVideo},
		{LocalPath: "/pool/parchment.jpg", MediaType: provider.MediaImage},
	})
}

func testPlan() *shotplan.Plan {
	return &shotplan.Plan{
		EpisodeTopic: "Napoleon's invasion of Russia",
		Scenes: []shotplan.Scene{
			{
				SceneID:           "scene_01",
				NarrationBlockIDs: []string{"block_01"},
				ShotStrategy:      shotplan.ShotStrategy{ShotTypes: []string{"action"}},
			},
			{
				SceneID:           "scene_02",
				NarrationBlockIDs: []string{"block_02", "block_03"},
				ShotStrategy:      shotplan.ShotStrategy{ShotTypes: []string{"map"}},
			},
		},
	}
}

func rankedAsset(id string, rank int, visualType string, scenes ...string) curator.Asset {
	return curator.Asset{
		Candidate: provider.Candidate{
			Source:    provider.SourceArchiveOrg,
			ItemID:    id,
			URL:       "https://archive.org/details/" + id,
			MediaType: provider.MediaVideo,
		},
		Fingerprint:    "archive.org/" + id,
		VisualType:     visualType,
		IntendedScenes: scenes,
		GlobalRank:     rank,
	}
}

func TestBuildTagsPrimaryAndSecondary(t *testing.T) {
	builder := NewBuilder(testPool(), logging.NewNop())
	assets := []curator.Asset{
		rankedAsset("second", 2, director.VisualOther, "scene_01"),
		rankedAsset("first", 1, director.VisualOther, "scene_01"),
	}
	pack := builder.Build(testPlan(), assets, nil)

	scene := pack.Scenes[0]
	if scene.SceneID != "scene_01" {
		t.Fatalf("expected scene_01 first, got %q", scene.SceneID)
	}
	if scene.Entries[0].ArchiveItemID != "first" || scene.Entries[0].Priority != PriorityPrimary {
		t.Fatalf("top-ranked asset must be primary, got %+v", scene.Entries[0])
	}
	if scene.Entries[1].ArchiveItemID != "second" || scene.Entries[1].Priority != PrioritySecondary {
		t.Fatalf("remaining assets must be secondary, got %+v", scene.Entries[1])
	}
}

func TestBuildCoverageInvariant(t *testing.T) {
	builder := NewBuilder(testPool(), logging.NewNop())
	assets := []curator.Asset{rankedAsset("only", 1, director.VisualOther, "scene_01")}
	pack := builder.Build(testPlan(), assets, nil)

	for _, scene := range pack.Scenes {
		if len(scene.Entries) == 0 {
			t.Fatalf("scene %s has an empty pool after fallback", scene.SceneID)
		}
	}
	second := pack.Scenes[1]
	for _, entry := range second.Entries {
		if entry.Priority != PriorityFallback && entry.Priority != PriorityTexture {
			t.Fatalf("unexpected entry in empty scene: %+v", entry)
		}
	}
	if pack.FallbackUsed == 0 {
		t.Fatal("expected fallback entries counted")
	}
}

func TestBuildTextureAffinity(t *testing.T) {
	builder := NewBuilder(testPool(), logging.NewNop())
	// The map asset was routed to scene_01 but scene_02's shot strategy
	// asks for maps.
	assets := []curator.Asset{
		rankedAsset("campaign-map", 1, director.VisualMap, "scene_01"),
		rankedAsset("charge", 2, director.VisualOther, "scene_02"),
	}
	pack := builder.Build(testPlan(), assets, nil)

	second := pack.Scenes[1]
	foundTexture := false
	for _, entry := range second.Entries {
		if entry.ArchiveItemID == "campaign-map" {
			foundTexture = true
			if entry.Priority != PriorityTexture {
				t.Fatalf("affinity pick must be texture, got %q", entry.Priority)
			}
		}
	}
	if !foundTexture {
		t.Fatalf("expected map asset shared into scene_02, got %+v", second.Entries)
	}
}

func TestBuildDeficitTriggersFallback(t *testing.T) {
	builder := NewBuilder(testPool(), logging.NewNop())
	// scene_02 wants maps, the curator reported a map deficit, and no map
	// asset exists anywhere.
	assets := []curator.Asset{rankedAsset("charge", 1, director.VisualOther, "scene_02")}
	deficits := []curator.Deficit{{VisualType: director.VisualMap, Severity: curator.SeverityCritical, Required: 2}}
	pack := builder.Build(testPlan(), assets, deficits)

	second := pack.Scenes[1]
	hasFallback := false
	for _, entry := range second.Entries {
		if entry.Priority == PriorityFallback {
			hasFallback = true
		}
	}
	if !hasFallback {
		t.Fatalf("deficit scene must receive fallback fill, got %+v", second.Entries)
	}
}

func TestBuildEmptyPoolLeavesSceneEmpty(t *testing.T) {
	builder := NewBuilder(safetypack.NewPool(nil), logging.NewNop())
	pack := builder.Build(testPlan(), nil, nil)
	for _, scene := range pack.Scenes {
		if len(scene.Entries) != 0 {
			t.Fatalf("no assets and no pool must yield empty entries, got %+v", scene.Entries)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	builder := NewBuilder(testPool(), logging.NewNop())
	pack := builder.Build(testPlan(), nil, nil)
	path := filepath.Join(t.TempDir(), "out", "sourcepack.json")
	if err := WriteFile(pack, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded SourcePack
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.EpisodeTopic != pack.EpisodeTopic || len(decoded.Scenes) != len(pack.Scenes) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}
