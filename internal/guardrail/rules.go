package guardrail

import "strings"

// Rules holds the versioned vocabularies the sanitizer applies. They are
// injected rather than hard-coded so deployments can override them and tests
// can pin exact tables.
type Rules struct {
	Version int

	// Stoplist contains filler and abstract words stripped from queries.
	Stoplist map[string]bool

	// NoiseTerms reject a query outright when present outside an
	// allow-listed phrase (band names, games, meme vocabulary).
	NoiseTerms map[string]bool

	// AllowPhrases are multi-word capitalized phrases that are legitimate
	// even though they contain stoplisted or noisy common words.
	AllowPhrases []string

	// MediaIntent is the physical-object vocabulary satisfying the
	// media-intent requirement.
	MediaIntent map[string]bool

	// ShotTypeIntent maps a shot type to the media token it demands.
	// Shot types absent from the map carry no media requirement.
	ShotTypeIntent map[string]string
}

// DefaultRules returns the built-in vocabulary tables.
func DefaultRules() Rules {
	return Rules{
		Version: 1,
		Stoplist: wordSet(
			"video", "clip", "scene", "shot", "visual", "image",
			"old", "vintage", "historic", "historical", "ancient", "classic",
			"amazing", "epic", "dramatic", "beautiful", "incredible", "rare",
			"concept", "idea", "theme", "story", "moment", "time", "era",
			"the", "a", "an", "of", "in", "on", "at", "and", "or", "with",
			"games", "style", "aesthetic", "vibe", "mood", "atmosphere",
		),
		NoiseTerms: wordSet(
			"band", "album", "song", "lyrics", "gameplay", "trailer",
			"meme", "reaction", "unboxing", "vlog", "tiktok", "shorts",
			"compilation", "remix", "cover",
		),
		AllowPhrases: []string{
			"Olympic Games",
			"World War",
			"Great War",
			"Cold War",
			"New World",
			"Old World",
		},
		MediaIntent: wordSet(
			"map", "letter", "document", "manuscript", "photograph", "photo",
			"engraving", "portrait", "painting", "poster", "newspaper",
			"telegram", "diary", "blueprint", "lithograph", "daguerreotype",
			"footage", "newsreel", "film",
		),
		ShotTypeIntent: map[string]string{
			"map":      "map",
			"document": "document",
			"letter":   "letter",
			"portrait": "portrait",
			"photo":    "photograph",
		},
	}
}

// RequiredMediaToken returns the media token demanded by the shot type, if any.
func (r Rules) RequiredMediaToken(shotType string) (string, bool) {
	token, ok := r.ShotTypeIntent[strings.ToLower(strings.TrimSpace(shotType))]
	return token, ok
}

// InAllowPhrase reports whether the word at position idx of words sits inside
// one of the allow-listed multi-word phrases.
func (r Rules) InAllowPhrase(words []string, idx int) bool {
	for _, phrase := range r.AllowPhrases {
		parts := strings.Fields(phrase)
		if len(parts) < 2 {
			continue
		}
		for offset := 0; offset < len(parts); offset++ {
			start := idx - offset
			if start < 0 || start+len(parts) > len(words) {
				continue
			}
			match := true
			for i, part := range parts {
				if !strings.EqualFold(words[start+i], part) {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, word := range words {
		set[strings.ToLower(word)] = true
	}
	return set
}
