package curator

import (
	"log/slog"
	"sort"

	"shotscout/internal/director"
	"shotscout/internal/logging"
	"shotscout/internal/provider"
)

// Deficit severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Candidate is a gated candidate annotated with what the director knew
// about its query and what the relevance gate scored for it.
type Candidate struct {
	provider.Candidate
	VisualType     string   `json:"visual_type"`
	IntendedScenes []string `json:"intended_scenes"`
	// TopicScore is the relevance gate's topic similarity, 0 when the
	// topic validator did not run.
	TopicScore float64 `json:"topic_score,omitempty"`
}

// Asset is one curated, ranked asset.
type Asset struct {
	provider.Candidate
	Fingerprint    string   `json:"fingerprint"`
	VisualType     string   `json:"visual_type"`
	IntendedScenes []string `json:"intended_scenes"`
	RelevanceScore float64  `json:"relevance_score"`
	QualityScore   float64  `json:"quality_score"`
	GlobalScore    float64  `json:"global_score"`
	GlobalRank     int      `json:"global_rank"`
}

// Deficit reports a visual type under its coverage minimum.
type Deficit struct {
	VisualType string `json:"visual_type"`
	Severity   string `json:"severity"`
	Required   int    `json:"required"`
	Actual     int    `json:"actual"`
}

// QualityReport summarizes the curation pass.
type QualityReport struct {
	Input          int `json:"input"`
	Deduplicated   int `json:"deduplicated"`
	Unidentifiable int `json:"unidentifiable"`
	Curated        int `json:"curated"`
}

// Output is the curator result.
type Output struct {
	Assets          []Asset        `json:"curated_assets"`
	CoverageBalance map[string]int `json:"coverage_balance"`
	Deficits        []Deficit      `json:"deficits"`
	QualityReport   QualityReport  `json:"quality_report"`
}

// Curator dedupes, scores, and ranks candidates.
type Curator struct {
	logger *slog.Logger
}

// New builds a curator.
func New(logger *slog.Logger) *Curator {
	return &Curator{logger: logging.NewComponentLogger(logger, "curator")}
}

// Curate runs the full pass: fingerprint dedup (first seen wins, intended
// scenes merged from duplicates), scoring, a stable descending sort with
// fingerprint tie-break, dense rank assignment, and coverage analysis.
func (c *Curator) Curate(candidates []Candidate, requirements []director.CoverageRequirement) Output {
	report := QualityReport{Input: len(candidates)}

	seen := make(map[string]int)
	assets := make([]Asset, 0, len(candidates))
	for _, candidate := range candidates {
		fp := fingerprint(candidate.Candidate)
		if fp == "" {
			report.Unidentifiable++
			c.logger.Debug("dropping unidentifiable candidate",
				logging.String("title", candidate.Title),
				logging.String(logging.FieldProvider, candidate.Source))
			continue
		}
		if idx, dup := seen[fp]; dup {
			report.Deduplicated++
			assets[idx].IntendedScenes = mergeScenes(assets[idx].IntendedScenes, candidate.IntendedScenes)
			continue
		}
		relevance := relevanceScore(candidate)
		quality := qualityScore(candidate.Candidate)
		seen[fp] = len(assets)
		assets = append(assets, Asset{
			Candidate:      candidate.Candidate,
			Fingerprint:    fp,
			VisualType:     candidate.VisualType,
			IntendedScenes: mergeScenes(nil, candidate.IntendedScenes),
			RelevanceScore: relevance,
			QualityScore:   quality,
			GlobalScore:    globalScore(relevance, quality),
		})
	}

	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].GlobalScore != assets[j].GlobalScore {
			return assets[i].GlobalScore > assets[j].GlobalScore
		}
		return assets[i].Fingerprint < assets[j].Fingerprint
	})
	denseRank(assets)

	report.Curated = len(assets)
	balance := coverageBalance(assets)
	return Output{
		Assets:          assets,
		CoverageBalance: balance,
		Deficits:        deficits(balance, requirements),
		QualityReport:   report,
	}
}

// Recandidates converts curated assets back into curator input, preserving
// their relevance signal. Feeding the result to Curate yields the same set.
func Recandidates(assets []Asset) []Candidate {
	candidates := make([]Candidate, 0, len(assets))
	for _, asset := range assets {
		candidates = append(candidates, Candidate{
			Candidate:      asset.Candidate,
			VisualType:     asset.VisualType,
			IntendedScenes: asset.IntendedScenes,
			TopicScore:     asset.RelevanceScore,
		})
	}
	return candidates
}

// denseRank assigns ranks after sorting: equal global scores share a rank
// and the next distinct score takes the following integer.
func denseRank(assets []Asset) {
	rank := 0
	prev := -1.0
	for i := range assets {
		if assets[i].GlobalScore != prev {
			rank++
			prev = assets[i].GlobalScore
		}
		assets[i].GlobalRank = rank
	}
}

func coverageBalance(assets []Asset) map[string]int {
	balance := make(map[string]int)
	for _, asset := range assets {
		if asset.VisualType != "" {
			balance[asset.VisualType]++
		}
	}
	return balance
}

func deficits(balance map[string]int, requirements []director.CoverageRequirement) []Deficit {
	var out []Deficit
	for _, req := range requirements {
		actual := balance[req.VisualType]
		if actual >= req.MinAssets {
			continue
		}
		severity := SeverityWarning
		if actual == 0 {
			severity = SeverityCritical
		}
		out = append(out, Deficit{
			VisualType: req.VisualType,
			Severity:   severity,
			Required:   req.MinAssets,
			Actual:     actual,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisualType < out[j].VisualType })
	return out
}

func mergeScenes(existing, extra []string) []string {
	set := make(map[string]bool, len(existing)+len(extra))
	for _, scene := range existing {
		set[scene] = true
	}
	for _, scene := range extra {
		set[scene] = true
	}
	merged := make([]string, 0, len(set))
	for scene := range set {
		merged = append(merged, scene)
	}
	sort.Strings(merged)
	return merged
}
