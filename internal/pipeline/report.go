package pipeline

import "shotscout/internal/curator"

// StageCounts carries the per-stage item counts of one run.
type StageCounts struct {
	RawQueries       int `json:"raw_queries"`
	ValidQueries     int `json:"valid_queries"`
	StrategicQueries int `json:"strategic_queries"`
	Candidates       int `json:"candidates"`
	CacheHits        int `json:"cache_hits"`
	GateAccepted     int `json:"gate_accepted"`
	GateRejected     int `json:"gate_rejected"`
	FrameRejected    int `json:"frame_rejected"`
	FrameUnverified  int `json:"frame_unverified"`
	Curated          int `json:"curated"`
	FallbackEntries  int `json:"fallback_entries"`
}

// Report is the accumulated diagnostics of one run. Quality shortfalls
// surface here, never as errors.
type Report struct {
	RunID             string            `json:"run_id,omitempty"`
	EpisodeTopic      string            `json:"episode_topic"`
	PlanSource        string            `json:"plan_source,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
	LowCoverageScenes []string          `json:"low_coverage_scenes,omitempty"`
	Deficits          []curator.Deficit `json:"deficits,omitempty"`
	ProviderFailures  int               `json:"provider_failures"`
	GateRejections    map[string]int    `json:"gate_rejections,omitempty"`
	FrameRejections   map[string]int    `json:"frame_rejections,omitempty"`
	Counts            StageCounts       `json:"counts"`
}
