package guardrail

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shotscout/internal/textutil"
)

var titleCaser = cases.Title(language.English)

// repair attempts one deterministic fix for the given failure reason. The
// boolean result reports whether anything changed; repair draws only on the
// context sources, in fixed priority order, and never invents content.
func (s *Sanitizer) repair(q Query, reason string, sctx Context) (Query, bool) {
	switch reason {
	case ReasonNoAnchor, ReasonBareYear:
		anchor := s.strongestAnchor(sctx)
		if anchor == "" {
			return q, false
		}
		text := anchor + " " + q.Text
		repaired := analyze(text, q.ShotType, s.rules)
		return repaired, true
	case ReasonNoMediaToken:
		token, required := s.rules.RequiredMediaToken(q.ShotType)
		if !required {
			return q, false
		}
		text := q.Text + " " + token
		repaired := analyze(text, q.ShotType, s.rules)
		return repaired, true
	default:
		return q, false
	}
}

// strongestAnchor picks the injection anchor: the first entity in the beat
// text, then the episode topic, then the scene keywords.
func (s *Sanitizer) strongestAnchor(sctx Context) string {
	if anchor := firstEntity(sctx.BeatText, s.rules); anchor != "" {
		return anchor
	}
	if anchor := firstEntity(sctx.EpisodeTopic, s.rules); anchor != "" {
		return anchor
	}
	for _, keyword := range sctx.Keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" || textutil.IsYearToken(keyword) {
			continue
		}
		if s.rules.Stoplist[strings.ToLower(keyword)] || s.rules.NoiseTerms[strings.ToLower(keyword)] {
			continue
		}
		// Keywords arrive lowercased; restore entity casing on injection.
		return titleCaser.String(keyword)
	}
	return ""
}

// firstEntity returns the first capitalized non-stoplist word of the text.
func firstEntity(text string, rules Rules) string {
	words := textutil.Words(text)
	for i, word := range words {
		if !textutil.IsCapitalized(word) || textutil.IsYearToken(word) {
			continue
		}
		if rules.Stoplist[strings.ToLower(word)] && !rules.InAllowPhrase(words, i) {
			continue
		}
		return word
	}
	return ""
}
