package relevance

import (
	"log/slog"
	"strings"

	"shotscout/internal/logging"
	"shotscout/internal/provider"
	"shotscout/internal/textutil"
)

// Gate modes, reported in every decision for diagnostics.
const (
	ModeStrongAnchors = "strong_anchors"
	ModeWeakAnchors   = "weak_anchors"
)

// Rejection and acceptance reasons.
const (
	ReasonStrongMatch      = "strong_anchor_match"
	ReasonNoStrongMatch    = "no_strong_anchor_match"
	ReasonWeakOverlap      = "weak_overlap"
	ReasonWeakOverlapBelow = "weak_overlap_below_minimum"
	ReasonNoAnchors        = "no_anchors"
	ReasonOffTopic         = "off_topic"
)

// Decision is the gate verdict for one candidate, with enough diagnostics
// to explain it in the run report.
type Decision struct {
	Accept         bool     `json:"accept"`
	Mode           string   `json:"mode"`
	Reason         string   `json:"reason"`
	MatchedAnchors []string `json:"matched_anchors,omitempty"`
	TopicScore     float64  `json:"topic_score,omitempty"`
}

// Gate evaluates candidates against scene anchors and, optionally, the
// episode topic. A nil topic fingerprint disables topic validation even
// when the policy enables it.
type Gate struct {
	policy Policy
	topic  *textutil.Fingerprint
	logger *slog.Logger
}

// NewGate builds a gate. topicText is the episode subject, typically the
// canonical topic plus the narration corpus so the fingerprint has enough
// vocabulary to separate on-topic from merely name-dropping candidates.
func NewGate(policy Policy, topicText string, logger *slog.Logger) *Gate {
	g := &Gate{
		policy: policy,
		logger: logging.NewComponentLogger(logger, "relevance"),
	}
	if policy.TopicValidation {
		g.topic = textutil.NewFingerprint(topicText)
	}
	return g
}

// Evaluate gates one candidate against the scene's anchor set. The anchor
// filter runs first; topic validation only rejects candidates that already
// passed on anchors.
func (g *Gate) Evaluate(candidate provider.Candidate, anchors AnchorSet) Decision {
	decision := g.anchorDecision(candidate, anchors)
	if !decision.Accept {
		return decision
	}
	if g.topic != nil {
		score := textutil.CosineSimilarity(g.topic, textutil.NewFingerprint(candidateText(candidate)))
		decision.TopicScore = score
		if score < g.policy.TopicSimilarity {
			decision.Accept = false
			decision.Reason = ReasonOffTopic
			g.logger.Debug("candidate off topic",
				logging.String("item_id", candidate.ItemID),
				logging.Float64("topic_score", score))
		}
	}
	return decision
}

func (g *Gate) anchorDecision(candidate provider.Candidate, anchors AnchorSet) Decision {
	if anchors.Empty() {
		// No signal to filter on; the scene trusts search ranking alone.
		return Decision{Accept: true, Mode: ModeWeakAnchors, Reason: ReasonNoAnchors}
	}

	haystack := tokenSet(candidateText(candidate))

	if anchors.HasStrong() {
		matched := matches(anchors.Strong, haystack)
		if len(matched) > 0 {
			return Decision{Accept: true, Mode: ModeStrongAnchors, Reason: ReasonStrongMatch, MatchedAnchors: matched}
		}
		return Decision{Accept: false, Mode: ModeStrongAnchors, Reason: ReasonNoStrongMatch}
	}

	matched := matches(anchors.Weak, haystack)
	need := g.policy.WeakOverlapMin
	if need > len(anchors.Weak) {
		need = len(anchors.Weak)
	}
	if need < 1 {
		need = 1
	}
	if len(matched) >= need {
		return Decision{Accept: true, Mode: ModeWeakAnchors, Reason: ReasonWeakOverlap, MatchedAnchors: matched}
	}
	return Decision{Accept: false, Mode: ModeWeakAnchors, Reason: ReasonWeakOverlapBelow, MatchedAnchors: matched}
}

func candidateText(candidate provider.Candidate) string {
	return strings.TrimSpace(candidate.Title + " " + candidate.Description)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range textutil.Tokenize(text) {
		set[token] = true
	}
	return set
}

func matches(anchors []string, haystack map[string]bool) []string {
	var matched []string
	for _, anchor := range anchors {
		if haystack[anchor] {
			matched = append(matched, anchor)
		}
	}
	return matched
}
