package relevance

// Policy holds the gate thresholds. The anchor-strength cutoffs are not
// final-tuned values; they are parameters validated by the scenario tests.
type Policy struct {
	WeakOverlapMin  int
	TopicValidation bool
	TopicSimilarity float64
}

// DefaultPolicy returns conservative defaults tuned for archival footage
// search, where recall matters more than precision.
func DefaultPolicy() Policy {
	return Policy{
		WeakOverlapMin:  2,
		TopicValidation: true,
		TopicSimilarity: 0.12,
	}
}
