package director

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"shotscout/internal/guardrail"
	"shotscout/internal/textutil"
)

// Visual type classes in priority order.
const (
	VisualMap         = "map"
	VisualDocument    = "document"
	VisualPortrait    = "portrait"
	VisualDestruction = "destruction"
	VisualCivilian    = "civilian"
	VisualOther       = "other"
)

// basePriority assigns the class priority per visual type. Rare single-scene
// queries get +1 on top so unique needs are not crowded out downstream.
var basePriority = map[string]int{
	VisualMap:         9,
	VisualDocument:    8,
	VisualPortrait:    7,
	VisualDestruction: 6,
	VisualCivilian:    5,
	VisualOther:       4,
}

// StrategicQuery is a deduplicated, prioritized search query shared across
// one or more scenes. QueryID is a stable content hash of the normalized
// text; Priority is fixed at creation and never mutated.
type StrategicQuery struct {
	QueryID        string   `json:"query_id"`
	Query          string   `json:"query"`
	Priority       int      `json:"priority"`
	VisualType     string   `json:"visual_type"`
	IntendedScenes []string `json:"intended_scenes"`
}

// CoverageRequirement states the minimum curated assets a visual type needs.
type CoverageRequirement struct {
	VisualType string `json:"visual_type"`
	MinAssets  int    `json:"min_assets"`
	Demand     int    `json:"demand"` // number of scenes requesting the type
}

// DedupeReport summarizes the deduplication pass.
type DedupeReport struct {
	TotalInput    int     `json:"total_input"`
	UniqueQueries int     `json:"unique_queries"`
	DuplicateRate float64 `json:"duplicate_rate"`
}

// Output is the director's result for one episode.
type Output struct {
	StrategicQueries     []StrategicQuery      `json:"strategic_queries"`
	CoverageRequirements []CoverageRequirement `json:"coverage_requirements"`
	DedupeReport         DedupeReport          `json:"dedupe_report"`
	Warnings             []string              `json:"warnings"`
}

// Limits holds the soft guardrails checked after deduplication. Breaches
// produce warnings, never failures.
type Limits struct {
	MaxQueries       int
	MaxMapShare      float64
	MaxDuplicateRate float64
}

// DefaultLimits returns the stock soft guardrails.
func DefaultLimits() Limits {
	return Limits{
		MaxQueries:       40,
		MaxMapShare:      0.20,
		MaxDuplicateRate: 0.10,
	}
}

// Dedupe collapses the sanitized per-scene queries into strategic queries,
// assigns priorities and visual types, derives coverage requirements, and
// reports soft-guardrail warnings.
func Dedupe(sceneResults []guardrail.SceneResult, limits Limits) Output {
	type bucket struct {
		query      guardrail.Query
		scenes     []string
		sceneSet   map[string]bool
		visualType string
	}

	order := make([]string, 0)
	buckets := make(map[string]*bucket)
	total := 0

	for _, result := range sceneResults {
		for _, q := range result.Queries {
			total++
			key := textutil.NormalizeQuery(q.Text)
			b, ok := buckets[key]
			if !ok {
				b = &bucket{
					query:      q,
					sceneSet:   make(map[string]bool),
					visualType: ClassifyVisualType(q),
				}
				buckets[key] = b
				order = append(order, key)
			}
			if !b.sceneSet[result.SceneID] {
				b.sceneSet[result.SceneID] = true
				b.scenes = append(b.scenes, result.SceneID)
			}
		}
	}

	queries := make([]StrategicQuery, 0, len(buckets))
	typeDemand := make(map[string]map[string]bool)
	for _, key := range order {
		b := buckets[key]
		priority := basePriority[b.visualType]
		if priority == 0 {
			priority = basePriority[VisualOther]
		}
		if len(b.scenes) == 1 {
			priority++
		}
		sort.Strings(b.scenes)
		queries = append(queries, StrategicQuery{
			QueryID:        QueryID(b.query.Text),
			Query:          b.query.Text,
			Priority:       priority,
			VisualType:     b.visualType,
			IntendedScenes: b.scenes,
		})
		if typeDemand[b.visualType] == nil {
			typeDemand[b.visualType] = make(map[string]bool)
		}
		for _, scene := range b.scenes {
			typeDemand[b.visualType][scene] = true
		}
	}

	sort.SliceStable(queries, func(i, j int) bool {
		if queries[i].Priority != queries[j].Priority {
			return queries[i].Priority > queries[j].Priority
		}
		return queries[i].QueryID < queries[j].QueryID
	})

	out := Output{
		StrategicQueries:     queries,
		CoverageRequirements: coverageRequirements(typeDemand),
		DedupeReport: DedupeReport{
			TotalInput:    total,
			UniqueQueries: len(queries),
		},
	}
	if total > 0 {
		out.DedupeReport.DuplicateRate = float64(total-len(queries)) / float64(total)
	}
	out.Warnings = checkLimits(out, limits)
	return out
}

// QueryID returns the stable identity hash for a query text.
func QueryID(text string) string {
	sum := sha1.Sum([]byte(textutil.NormalizeQuery(text)))
	return hex.EncodeToString(sum[:])[:12]
}

// ClassifyVisualType maps a sanitized query to its visual type class, using
// the shot type first and the media-intent token as a fallback signal.
func ClassifyVisualType(q guardrail.Query) string {
	switch strings.ToLower(strings.TrimSpace(q.ShotType)) {
	case "map":
		return VisualMap
	case "document", "letter":
		return VisualDocument
	case "portrait", "photo":
		return VisualPortrait
	case "destruction", "action":
		return VisualDestruction
	case "civilian", "daily_life":
		return VisualCivilian
	}
	for _, token := range q.MediaTokens {
		switch strings.ToLower(token) {
		case "map", "blueprint":
			return VisualMap
		case "document", "letter", "manuscript", "telegram", "diary", "newspaper":
			return VisualDocument
		case "portrait", "photograph", "photo", "painting", "daguerreotype":
			return VisualPortrait
		}
	}
	return VisualOther
}

func coverageRequirements(typeDemand map[string]map[string]bool) []CoverageRequirement {
	reqs := make([]CoverageRequirement, 0, len(typeDemand))
	for visualType, scenes := range typeDemand {
		demand := len(scenes)
		if demand < 2 {
			continue
		}
		reqs = append(reqs, CoverageRequirement{
			VisualType: visualType,
			MinAssets:  clamp(demand, 2, 5),
			Demand:     demand,
		})
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].VisualType < reqs[j].VisualType })
	return reqs
}

func checkLimits(out Output, limits Limits) []string {
	var warnings []string
	if limits.MaxQueries > 0 && len(out.StrategicQueries) > limits.MaxQueries {
		warnings = append(warnings, fmt.Sprintf("strategic query count %d exceeds cap %d", len(out.StrategicQueries), limits.MaxQueries))
	}
	if limits.MaxMapShare > 0 && len(out.StrategicQueries) > 0 {
		maps := 0
		for _, q := range out.StrategicQueries {
			if q.VisualType == VisualMap {
				maps++
			}
		}
		share := float64(maps) / float64(len(out.StrategicQueries))
		if share > limits.MaxMapShare {
			warnings = append(warnings, fmt.Sprintf("map queries are %.0f%% of total, above %.0f%%", share*100, limits.MaxMapShare*100))
		}
	}
	if limits.MaxDuplicateRate > 0 && out.DedupeReport.DuplicateRate > limits.MaxDuplicateRate {
		warnings = append(warnings, fmt.Sprintf("duplicate rate %.0f%% above %.0f%%", out.DedupeReport.DuplicateRate*100, limits.MaxDuplicateRate*100))
	}
	return warnings
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
