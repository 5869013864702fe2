package guardrail

import (
	"log/slog"
	"strings"

	"shotscout/internal/logging"
	"shotscout/internal/services"
	"shotscout/internal/shotplan"
)

// Context supplies the source material the sanitizer may draw anchors from.
// Repair never fabricates content absent from these fields.
type Context struct {
	BeatText     string
	EpisodeTopic string
	Keywords     []string
	ShotType     string
}

// Rejection reasons reported in diagnostics.
const (
	ReasonEmptyQuery   = "empty_query"
	ReasonNoAnchor     = "no_anchor"
	ReasonBareYear     = "bare_year"
	ReasonNoMediaToken = "no_media_token"
	ReasonNoiseTerm    = "noise_term"
)

// Diagnostic records the outcome of sanitizing one raw query.
type Diagnostic struct {
	Raw      string
	Accepted bool
	Reason   string
	Repaired bool
}

// SceneResult is the guardrail output for one scene.
type SceneResult struct {
	SceneID     string
	Queries     []Query
	LowCoverage bool
	Diagnostics []Diagnostic
}

// Sanitizer applies the guardrail rules to raw scene queries.
type Sanitizer struct {
	rules          Rules
	repairAttempts int
	minValid       int
	logger         *slog.Logger
}

// NewSanitizer builds a sanitizer. repairAttempts bounds deterministic
// repair retries per query; minValid is the per-scene valid-query floor
// below which the result is flagged low coverage.
func NewSanitizer(rules Rules, repairAttempts, minValid int, logger *slog.Logger) *Sanitizer {
	if repairAttempts < 0 {
		repairAttempts = 0
	}
	return &Sanitizer{
		rules:          rules,
		repairAttempts: repairAttempts,
		minValid:       minValid,
		logger:         logging.NewComponentLogger(logger, "guardrail"),
	}
}

// Sanitize validates one raw query against the rule tables, attempting
// deterministic repair when it fails. The boolean result reports acceptance;
// the string carries the rejection reason otherwise.
func (s *Sanitizer) Sanitize(raw string, sctx Context) (Query, bool, string) {
	if strings.TrimSpace(raw) == "" {
		return Query{}, false, ReasonEmptyQuery
	}

	text := stripStoplist(raw, s.rules)
	if term := noiseTerm(text, s.rules); term != "" {
		return Query{}, false, ReasonNoiseTerm
	}

	q := analyze(text, sctx.ShotType, s.rules)
	reason := s.check(q)
	for attempt := 0; reason != "" && attempt < s.repairAttempts; attempt++ {
		repaired, changed := s.repair(q, reason, sctx)
		if !changed {
			break
		}
		repaired.Repaired = true
		q = repaired
		reason = s.check(q)
	}
	if reason != "" {
		return Query{}, false, reason
	}
	return q, true, ""
}

// SanitizeScene runs every raw query of the scene through Sanitize and
// enforces the minimum valid-query floor. A missing episode topic is the one
// fatal condition: it is a precondition bug in the canonical metadata path,
// not a data-quality issue.
func (s *Sanitizer) SanitizeScene(scene shotplan.Scene, episodeTopic string) (SceneResult, error) {
	if strings.TrimSpace(episodeTopic) == "" {
		return SceneResult{}, services.Wrap(services.ErrValidation, "guardrail", "sanitize", "episode topic missing", nil)
	}

	result := SceneResult{SceneID: scene.SceneID}
	shotTypes := scene.ShotStrategy.ShotTypes
	if len(shotTypes) == 0 {
		shotTypes = []string{""}
	}

	for i, raw := range scene.SearchQueries {
		shotType := shotTypes[i%len(shotTypes)]
		sctx := Context{
			BeatText:     scene.Narration,
			EpisodeTopic: episodeTopic,
			Keywords:     scene.Keywords,
			ShotType:     shotType,
		}
		q, ok, reason := s.Sanitize(raw, sctx)
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Raw:      raw,
			Accepted: ok,
			Reason:   reason,
			Repaired: q.Repaired,
		})
		if ok {
			result.Queries = append(result.Queries, q)
		}
	}

	if len(result.Queries) < s.minValid {
		result.LowCoverage = true
		logging.WarnWithContext(s.logger, "scene below valid-query floor", "guardrail_low_coverage",
			logging.String(logging.FieldSceneID, scene.SceneID),
			logging.Int("valid_queries", len(result.Queries)),
			logging.Int("min_valid", s.minValid),
			logging.String(logging.FieldImpact, "scene may rely on fallback assets"))
	}
	return result, nil
}

// check returns the first unmet requirement, or "" when the query is valid.
func (s *Sanitizer) check(q Query) string {
	if strings.TrimSpace(q.Text) == "" {
		return ReasonEmptyQuery
	}
	if !q.HasAnchor() {
		if len(q.Years) > 0 {
			return ReasonBareYear
		}
		return ReasonNoAnchor
	}
	if token, required := s.rules.RequiredMediaToken(q.ShotType); required {
		if !q.HasMediaToken(token) {
			return ReasonNoMediaToken
		}
	}
	return ""
}
