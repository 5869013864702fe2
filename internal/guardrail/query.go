package guardrail

import (
	"strings"

	"shotscout/internal/textutil"
)

// Query is a sanitized search query with its derived anchor classification.
type Query struct {
	Text        string
	Entities    []string // proper-noun anchor tokens, original casing
	Years       []string // 4-digit year tokens
	MediaTokens []string // media-intent tokens present, in query order
	ShotType    string
	Repaired    bool
}

// HasAnchor reports whether the query satisfies the anchor requirement:
// a proper noun, or a year accompanied by an entity. A bare year is not
// enough to pin a search to a subject.
func (q Query) HasAnchor() bool {
	return len(q.Entities) > 0
}

// HasMediaToken reports whether the query contains the given media-intent
// token anywhere, regardless of position.
func (q Query) HasMediaToken(token string) bool {
	for _, present := range q.MediaTokens {
		if strings.EqualFold(present, token) {
			return true
		}
	}
	return false
}

// analyze classifies the words of a query against the rule tables.
func analyze(text string, shotType string, rules Rules) Query {
	words := textutil.Words(text)
	q := Query{Text: strings.Join(words, " "), ShotType: shotType}
	for i, word := range words {
		lower := strings.ToLower(word)
		switch {
		case textutil.IsYearToken(word):
			q.Years = append(q.Years, word)
		case textutil.IsCapitalized(word):
			// Capitalized stoplist words ("The", "Games") only count as
			// entities inside an allow-listed phrase.
			if !rules.Stoplist[lower] || rules.InAllowPhrase(words, i) {
				q.Entities = append(q.Entities, word)
			}
		}
		if rules.MediaIntent[lower] {
			q.MediaTokens = append(q.MediaTokens, word)
		}
	}
	return q
}

// stripStoplist removes stoplisted words while preserving capitalized
// tokens, years, and words inside allow-listed phrases.
func stripStoplist(text string, rules Rules) string {
	words := textutil.Words(text)
	kept := make([]string, 0, len(words))
	for i, word := range words {
		lower := strings.ToLower(word)
		if rules.Stoplist[lower] &&
			!textutil.IsCapitalized(word) &&
			!textutil.IsYearToken(word) &&
			!rules.InAllowPhrase(words, i) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// noiseTerm returns the first noise term present outside an allow-listed
// phrase, or "" when the query is clean.
func noiseTerm(text string, rules Rules) string {
	words := textutil.Words(text)
	for i, word := range words {
		if rules.NoiseTerms[strings.ToLower(word)] && !rules.InAllowPhrase(words, i) {
			return word
		}
	}
	return ""
}
