package relevance

import (
	"sort"
	"strings"

	"shotscout/internal/textutil"
)

// AnchorSet partitions the scene's vocabulary into strong anchors (proper
// nouns and 4-digit years, the tokens that tie a scene to a specific entity
// or time) and weak anchors (everything else). Tokens are lowercased.
type AnchorSet struct {
	Strong []string
	Weak   []string
}

// HasStrong reports whether the scene yielded at least one strong anchor.
func (a AnchorSet) HasStrong() bool { return len(a.Strong) > 0 }

// Empty reports whether the scene yielded no usable anchors at all.
func (a AnchorSet) Empty() bool { return len(a.Strong) == 0 && len(a.Weak) == 0 }

// ExtractAnchors derives the anchor set for a scene from its narration and
// keywords. A capitalized narration word mid-sentence is a proper noun; a
// sentence-leading capitalized word counts only when a scene keyword confirms
// it, since English capitalizes every sentence start. Years are strong
// wherever they appear. Keywords arrive lowercased, so a keyword is strong
// only when it is a year or names an entity the narration capitalized.
func ExtractAnchors(narration string, keywords []string) AnchorSet {
	keywordSet := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywordSet[kw] = true
		}
	}

	strong := make(map[string]bool)
	fields := strings.Fields(narration)
	prev := ""
	for i, field := range fields {
		word := strings.Trim(field, punctuationTrim)
		leading := i == 0 || endsSentence(prev)
		prev = field
		if word == "" {
			continue
		}
		token := strings.ToLower(word)
		switch {
		case textutil.IsYearToken(token):
			strong[token] = true
		case textutil.IsCapitalized(word) && (!leading || keywordSet[token]):
			strong[token] = true
		}
	}
	for kw := range keywordSet {
		if textutil.IsYearToken(kw) {
			strong[kw] = true
		}
	}

	weak := make(map[string]bool)
	for _, token := range textutil.Tokenize(narration) {
		if !strong[token] {
			weak[token] = true
		}
	}
	for kw := range keywordSet {
		if !strong[kw] {
			weak[kw] = true
		}
	}

	return AnchorSet{Strong: sortedKeys(strong), Weak: sortedKeys(weak)}
}

const punctuationTrim = ".,;:!?()[]{}'\"“”‘’"

func endsSentence(field string) bool {
	trimmed := strings.TrimRight(field, "'\")]”’")
	return strings.HasSuffix(trimmed, ".") ||
		strings.HasSuffix(trimmed, "!") ||
		strings.HasSuffix(trimmed, "?")
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
