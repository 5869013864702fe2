package textutil

import (
	"regexp"
	"strings"
)

var (
	nonAlnumPattern    = regexp.MustCompile(`[^a-z0-9]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	yearTokenPattern   = regexp.MustCompile(`^\d{4}$`)
	digitsOnlyPattern  = regexp.MustCompile(`^\d+$`)
	fileNameReplacer   = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "", "\"", "", "<", "", ">", "", "|", "")
	punctuationTrimSet = ".,;:!?()[]{}'\"“”‘’"
)

// NormalizeQuery lowercases and collapses whitespace. Used as the
// deduplication key for strategic queries and as the cache key component.
func NormalizeQuery(text string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// Tokenize splits text into lowercase alphanumeric tokens. Tokens shorter
// than three characters are dropped unless they are all digits, so that
// years and other numeric anchors survive.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := nonAlnumPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		if len(token) < 3 && !digitsOnlyPattern.MatchString(token) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Words splits text on whitespace and trims surrounding punctuation while
// preserving the original casing of each word.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.Trim(field, punctuationTrimSet)
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}

// IsYearToken reports whether the token is a bare 4-digit year.
func IsYearToken(token string) bool {
	return yearTokenPattern.MatchString(token)
}

// IsCapitalized reports whether the word starts with an uppercase letter.
func IsCapitalized(word string) bool {
	if word == "" {
		return false
	}
	first := rune(word[0])
	return first >= 'A' && first <= 'Z'
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept,
// everything else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
