package curator

import (
	"strings"

	"shotscout/internal/provider"
	"shotscout/internal/textutil"
)

// Score weights. Relevance dominates quality in the combined score so a
// sharp but pretty mismatch never outranks on-topic footage.
const (
	relevanceWeight = 0.6
	qualityWeight   = 0.4

	neutralRelevance = 0.5
)

// Quality component weights, summing to 1.
const (
	mediaTypeWeight = 0.35
	trustWeight     = 0.25
	thumbnailWeight = 0.20
	titleWeight     = 0.20
)

// titleSpecificityCap is the word count at which a title is considered
// fully specific.
const titleSpecificityCap = 8

// sourceTrust ranks providers by how consistently their metadata matches
// their media.
var sourceTrust = map[string]float64{
	provider.SourceArchiveOrg: 1.0,
	provider.SourceWikimedia:  0.9,
	provider.SourceEuropeana:  0.8,
	provider.SourceLocal:      0.6,
}

// qualityScore rates intrinsic asset quality in [0,1] from media type,
// source trust, thumbnail presence, and title specificity.
func qualityScore(c provider.Candidate) float64 {
	mediaType := 0.5
	switch c.MediaType {
	case provider.MediaVideo:
		mediaType = 1.0
	case provider.MediaImage:
		mediaType = 0.7
	}

	trust, ok := sourceTrust[strings.ToLower(strings.TrimSpace(c.Source))]
	if !ok {
		trust = 0.5
	}

	thumbnail := 0.0
	if strings.TrimSpace(c.Thumbnail) != "" {
		thumbnail = 1.0
	}

	words := len(textutil.Words(c.Title))
	specificity := float64(words) / titleSpecificityCap
	if specificity > 1 {
		specificity = 1
	}

	return mediaType*mediaTypeWeight +
		trust*trustWeight +
		thumbnail*thumbnailWeight +
		specificity*titleWeight
}

// relevanceScore prefers the upstream topic signal, falls back to a score
// derived from the provider's search rank, and defaults to neutral when
// neither exists.
func relevanceScore(c Candidate) float64 {
	if c.TopicScore > 0 {
		if c.TopicScore > 1 {
			return 1
		}
		return c.TopicScore
	}
	if c.Rank > 0 {
		return 1 / (1 + float64(c.Rank-1)/10)
	}
	return neutralRelevance
}

func globalScore(relevance, quality float64) float64 {
	return relevanceWeight*relevance + qualityWeight*quality
}
