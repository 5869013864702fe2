// Package curator turns gated candidates into the final ranked asset set.
// It fingerprints and deduplicates candidates, scores them on relevance
// and quality, assigns deterministic dense ranks, and reports coverage
// against the director's requirements. Curation is idempotent: running it
// over its own output removes nothing.
package curator
