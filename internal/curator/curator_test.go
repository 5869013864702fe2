package curator

import (
	"reflect"
	"strings"
	"testing"

	"shotscout/internal/director"
	"shotscout/internal/logging"
	"shotscout/internal/provider"
)

func newTestCurator() *Curator {
	return New(logging.NewNop())
}

func candidateWithID(id string, scenes ...string) Candidate {
	return Candidate{
		Candidate: provider.Candidate{
			Source:    provider.SourceArchiveOrg,
			ItemID:    id,
			URL:       "https://archive.org/details/" + id,
			MediaType: provider.MediaVideo,
			Title:     "Archival footage " + id,
			Rank:      1,
		},
		VisualType:     director.VisualOther,
		IntendedScenes: scenes,
	}
}

func TestFingerprintFallbackChain(t *testing.T) {
	withID := provider.Candidate{Source: "archive.org", ItemID: "item-1"}
	if got := fingerprint(withID); got != "archive.org/item-1" {
		t.Fatalf("item id fingerprint = %q", got)
	}
	withURL := provider.Candidate{URL: "https://example.org/a.mp4"}
	if got := fingerprint(withURL); !strings.HasPrefix(got, "url:") {
		t.Fatalf("expected url fingerprint, got %q", got)
	}
	withTitle := provider.Candidate{Title: "Some  Newsreel"}
	if got := fingerprint(withTitle); !strings.HasPrefix(got, "title:") {
		t.Fatalf("expected title fingerprint, got %q", got)
	}
	if got := fingerprint(provider.Candidate{}); got != "" {
		t.Fatalf("unidentifiable candidate must fingerprint empty, got %q", got)
	}
}

func TestFingerprintNormalizesTitleVariants(t *testing.T) {
	a := fingerprint(provider.Candidate{Title: "The  Retreat From Moscow"})
	b := fingerprint(provider.Candidate{Title: "the retreat from moscow"})
	if a != b {
		t.Fatalf("title fingerprints differ: %q vs %q", a, b)
	}
}

func TestCurateCollapsesIdenticalItemIDsRegardlessOfOrder(t *testing.T) {
	curator := newTestCurator()
	a := candidateWithID("newsreel-1", "scene_01")
	b := candidateWithID("newsreel-1", "scene_02")
	other := candidateWithID("newsreel-2", "scene_03")

	forward := curator.Curate([]Candidate{a, b, other}, nil)
	reversed := curator.Curate([]Candidate{b, a, other}, nil)

	if len(forward.Assets) != 2 || len(reversed.Assets) != 2 {
		t.Fatalf("expected 2 assets both ways, got %d and %d", len(forward.Assets), len(reversed.Assets))
	}
	if forward.QualityReport.Deduplicated != 1 {
		t.Fatalf("expected 1 dedup, got %d", forward.QualityReport.Deduplicated)
	}
	for _, out := range []Output{forward, reversed} {
		for _, asset := range out.Assets {
			if asset.ItemID == "newsreel-1" {
				want := []string{"scene_01", "scene_02"}
				if !reflect.DeepEqual(asset.IntendedScenes, want) {
					t.Fatalf("duplicate scenes must merge, got %v", asset.IntendedScenes)
				}
			}
		}
	}
}

func TestCurateDropsUnidentifiable(t *testing.T) {
	out := newTestCurator().Curate([]Candidate{{}}, nil)
	if len(out.Assets) != 0 || out.QualityReport.Unidentifiable != 1 {
		t.Fatalf("expected drop, got %+v", out.QualityReport)
	}
}

func TestCurateIsIdempotent(t *testing.T) {
	curator := newTestCurator()
	input := []Candidate{
		candidateWithID("a", "scene_01"),
		candidateWithID("b", "scene_01"),
		candidateWithID("a", "scene_02"),
		{
			Candidate: provider.Candidate{
				Source:    provider.SourceWikimedia,
				ItemID:    "File:Map.png",
				MediaType: provider.MediaImage,
				Title:     "Campaign map",
				Rank:      3,
			},
			VisualType:     director.VisualMap,
			IntendedScenes: []string{"scene_02"},
			TopicScore:     0.4,
		},
	}
	first := curator.Curate(input, nil)
	second := curator.Curate(Recandidates(first.Assets), nil)

	if len(second.Assets) != len(first.Assets) {
		t.Fatalf("re-curation removed assets: %d -> %d", len(first.Assets), len(second.Assets))
	}
	for i := range first.Assets {
		if first.Assets[i].Fingerprint != second.Assets[i].Fingerprint {
			t.Fatalf("re-curation reordered assets at %d: %q vs %q",
				i, first.Assets[i].Fingerprint, second.Assets[i].Fingerprint)
		}
		if first.Assets[i].GlobalRank != second.Assets[i].GlobalRank {
			t.Fatalf("re-curation changed rank at %d", i)
		}
	}
}

func TestCurateRankingIsDeterministic(t *testing.T) {
	curator := newTestCurator()
	input := []Candidate{
		candidateWithID("c", "scene_01"),
		candidateWithID("a", "scene_01"),
		candidateWithID("b", "scene_01"),
	}
	first := curator.Curate(input, nil)
	second := curator.Curate(input, nil)
	for i := range first.Assets {
		if first.Assets[i].Fingerprint != second.Assets[i].Fingerprint ||
			first.Assets[i].GlobalRank != second.Assets[i].GlobalRank {
			t.Fatalf("rank order not reproducible at %d", i)
		}
	}
	// Identical candidates tie on score and share a dense rank; order inside
	// the tie follows the fingerprint.
	if first.Assets[0].GlobalRank != 1 || first.Assets[2].GlobalRank != 1 {
		t.Fatalf("expected shared dense rank, got %d and %d",
			first.Assets[0].GlobalRank, first.Assets[2].GlobalRank)
	}
	if first.Assets[0].ItemID != "a" {
		t.Fatalf("tie-break must order by fingerprint, got %q first", first.Assets[0].ItemID)
	}
}

func TestCurateQualityPrefersVideoWithThumbnail(t *testing.T) {
	curator := newTestCurator()
	video := Candidate{
		Candidate: provider.Candidate{
			Source:    provider.SourceArchiveOrg,
			ItemID:    "vid",
			MediaType: provider.MediaVideo,
			Thumbnail: "https://archive.org/services/img/vid",
			Title:     "Moscow fire newsreel footage from 1812 retreat",
			Rank:      1,
		},
	}
	image := Candidate{
		Candidate: provider.Candidate{
			Source:    provider.SourceEuropeana,
			ItemID:    "img",
			MediaType: provider.MediaImage,
			Title:     "Engraving",
			Rank:      1,
		},
	}
	out := curator.Curate([]Candidate{image, video}, nil)
	if out.Assets[0].ItemID != "vid" {
		t.Fatalf("expected video ranked first, got %q", out.Assets[0].ItemID)
	}
	if out.Assets[0].GlobalRank != 1 || out.Assets[1].GlobalRank != 2 {
		t.Fatalf("expected dense ranks 1,2 got %d,%d", out.Assets[0].GlobalRank, out.Assets[1].GlobalRank)
	}
}

func TestCurateCoverageDeficits(t *testing.T) {
	curator := newTestCurator()
	mapAsset := candidateWithID("map-1", "scene_01")
	mapAsset.VisualType = director.VisualMap
	requirements := []director.CoverageRequirement{
		{VisualType: director.VisualMap, MinAssets: 2, Demand: 2},
		{VisualType: director.VisualPortrait, MinAssets: 3, Demand: 3},
	}
	out := curator.Curate([]Candidate{mapAsset}, requirements)
	if len(out.Deficits) != 2 {
		t.Fatalf("expected 2 deficits, got %+v", out.Deficits)
	}
	byType := make(map[string]Deficit)
	for _, d := range out.Deficits {
		byType[d.VisualType] = d
	}
	if byType[director.VisualMap].Severity != SeverityWarning {
		t.Fatalf("partial coverage must be a warning, got %+v", byType[director.VisualMap])
	}
	if byType[director.VisualPortrait].Severity != SeverityCritical {
		t.Fatalf("zero coverage must be critical, got %+v", byType[director.VisualPortrait])
	}
}
