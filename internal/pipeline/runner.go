package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"shotscout/internal/curator"
	"shotscout/internal/director"
	"shotscout/internal/framecheck"
	"shotscout/internal/guardrail"
	"shotscout/internal/logging"
	"shotscout/internal/manifest"
	"shotscout/internal/relevance"
	"shotscout/internal/resolver"
	"shotscout/internal/runstore"
	"shotscout/internal/shotplan"
)

// Config wires the stage implementations into a runner. Runs is optional;
// a nil store skips history persistence.
type Config struct {
	Sanitizer  *guardrail.Sanitizer
	Limits     director.Limits
	Resolver   *resolver.Resolver
	Policy     relevance.Policy
	Checker    *framecheck.Checker
	Curator    *curator.Curator
	Manifest   *manifest.Builder
	Runs       *runstore.Store
	PlanSource string
	Logger     *slog.Logger
}

// Runner executes the full resolution pipeline for one episode.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// New builds a runner.
func New(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(cfg.Logger, "pipeline"),
	}
}

// Run executes every stage against the plan and returns the manifest and
// the accumulated report.
func (r *Runner) Run(ctx context.Context, plan *shotplan.Plan) (manifest.SourcePack, Report, error) {
	report := Report{PlanSource: r.cfg.PlanSource, GateRejections: make(map[string]int), FrameRejections: make(map[string]int)}
	if err := plan.Validate(); err != nil {
		return manifest.SourcePack{}, report, err
	}
	report.EpisodeTopic = plan.EpisodeTopic

	run := r.beginRun(ctx, plan)
	if run != nil {
		report.RunID = run.ID
	}

	sceneResults, err := r.sanitizeScenes(plan, &report)
	if err != nil {
		return manifest.SourcePack{}, report, err
	}

	output := director.Dedupe(sceneResults, r.cfg.Limits)
	report.Warnings = append(report.Warnings, output.Warnings...)
	report.Counts.StrategicQueries = len(output.StrategicQueries)
	r.logger.Info("strategic queries planned",
		logging.Int("queries", len(output.StrategicQueries)),
		logging.Int("coverage_requirements", len(output.CoverageRequirements)))

	results, summary, err := r.cfg.Resolver.Resolve(ctx, output.StrategicQueries)
	if err != nil {
		return manifest.SourcePack{}, report, err
	}
	report.Counts.Candidates = summary.TotalCandidates
	report.Counts.CacheHits = summary.CacheHits
	report.ProviderFailures = summary.ProviderFailures

	gated := r.gateCandidates(ctx, plan, output, results, &report)

	curated := r.cfg.Curator.Curate(gated, output.CoverageRequirements)
	report.Counts.Curated = len(curated.Assets)
	report.Deficits = curated.Deficits

	pack := r.cfg.Manifest.Build(plan, curated.Assets, curated.Deficits)
	report.Counts.FallbackEntries = pack.FallbackUsed

	r.finishRun(ctx, run, output, &report)
	r.logger.Info("pipeline run complete",
		logging.Int("curated_assets", len(curated.Assets)),
		logging.Int("fallback_entries", pack.FallbackUsed),
		logging.Int("warnings", len(report.Warnings)))
	return pack, report, nil
}

func (r *Runner) sanitizeScenes(plan *shotplan.Plan, report *Report) ([]guardrail.SceneResult, error) {
	var sceneResults []guardrail.SceneResult
	for _, scene := range plan.SortedScenes() {
		report.Counts.RawQueries += len(scene.SearchQueries)
		result, err := r.cfg.Sanitizer.SanitizeScene(scene, plan.EpisodeTopic)
		if err != nil {
			return nil, err
		}
		report.Counts.ValidQueries += len(result.Queries)
		if result.LowCoverage {
			report.LowCoverageScenes = append(report.LowCoverageScenes, scene.SceneID)
		}
		sceneResults = append(sceneResults, result)
	}
	return sceneResults, nil
}

// gateCandidates runs the relevance and perceptual gates over the raw
// candidates and annotates the survivors for the curator.
func (r *Runner) gateCandidates(ctx context.Context, plan *shotplan.Plan, output director.Output, results []resolver.QueryResult, report *Report) []curator.Candidate {
	gate := relevance.NewGate(r.cfg.Policy, topicText(plan), r.cfg.Logger)
	sceneAnchors := make(map[string]relevance.AnchorSet, len(plan.Scenes))
	for _, scene := range plan.Scenes {
		sceneAnchors[scene.SceneID] = relevance.ExtractAnchors(scene.Narration, scene.Keywords)
	}
	queriesByID := make(map[string]director.StrategicQuery, len(output.StrategicQueries))
	for _, query := range output.StrategicQueries {
		queriesByID[query.QueryID] = query
	}

	var gated []curator.Candidate
	for _, result := range results {
		query, ok := queriesByID[result.QueryID]
		if !ok {
			continue
		}
		anchors := mergeAnchors(sceneAnchors, query.IntendedScenes)
		for _, candidate := range result.Candidates {
			decision := gate.Evaluate(candidate, anchors)
			if !decision.Accept {
				report.Counts.GateRejected++
				report.GateRejections[decision.Reason]++
				continue
			}
			report.Counts.GateAccepted++

			verdict := r.cfg.Checker.Check(ctx, candidate)
			switch verdict.Status {
			case framecheck.StatusRejected:
				report.Counts.FrameRejected++
				report.FrameRejections[verdict.Reason]++
				continue
			case framecheck.StatusUnverified:
				report.Counts.FrameUnverified++
			}

			gated = append(gated, curator.Candidate{
				Candidate:      candidate,
				VisualType:     query.VisualType,
				IntendedScenes: query.IntendedScenes,
				TopicScore:     decision.TopicScore,
			})
		}
	}
	return gated
}

func (r *Runner) beginRun(ctx context.Context, plan *shotplan.Plan) *runstore.Run {
	if r.cfg.Runs == nil {
		return nil
	}
	run, err := r.cfg.Runs.Begin(ctx, plan.EpisodeTopic, r.cfg.PlanSource, len(plan.Scenes))
	if err != nil {
		logging.WarnWithContext(r.logger, "run history unavailable", "runstore_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in history"))
		return nil
	}
	return run
}

func (r *Runner) finishRun(ctx context.Context, run *runstore.Run, output director.Output, report *Report) {
	if r.cfg.Runs == nil || run == nil {
		return
	}
	run.CandidateCount = report.Counts.Candidates
	run.CuratedCount = report.Counts.Curated
	run.FallbackCount = report.Counts.FallbackEntries
	run.WarningCount = len(report.Warnings)
	if err := r.cfg.Runs.Finish(ctx, run, report, output.StrategicQueries); err != nil {
		logging.WarnWithContext(r.logger, "run history unavailable", "runstore_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldRunID, run.ID),
			logging.String(logging.FieldImpact, "run outcome not recorded"))
	}
}

// topicText assembles the episode subject corpus for topic validation:
// the canonical topic plus every scene's narration.
func topicText(plan *shotplan.Plan) string {
	parts := []string{plan.EpisodeTopic}
	for _, scene := range plan.Scenes {
		if narration := strings.TrimSpace(scene.Narration); narration != "" {
			parts = append(parts, narration)
		}
	}
	return strings.Join(parts, " ")
}

// mergeAnchors unions the anchor sets of the scenes a query serves.
func mergeAnchors(sceneAnchors map[string]relevance.AnchorSet, sceneIDs []string) relevance.AnchorSet {
	if len(sceneIDs) == 1 {
		return sceneAnchors[sceneIDs[0]]
	}
	strong := make(map[string]bool)
	weak := make(map[string]bool)
	for _, sceneID := range sceneIDs {
		anchors := sceneAnchors[sceneID]
		for _, token := range anchors.Strong {
			strong[token] = true
		}
		for _, token := range anchors.Weak {
			weak[token] = true
		}
	}
	merged := relevance.AnchorSet{}
	for token := range strong {
		merged.Strong = append(merged.Strong, token)
		delete(weak, token)
	}
	for token := range weak {
		merged.Weak = append(merged.Weak, token)
	}
	sort.Strings(merged.Strong)
	sort.Strings(merged.Weak)
	return merged
}
