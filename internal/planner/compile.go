package planner

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shotscout/internal/relevance"
	"shotscout/internal/shotplan"
	"shotscout/internal/textutil"
)

var titleCaser = cases.Title(language.English)

// compiledBeatDurationSec is the fixed scene length of compiled plans;
// compiled timing is a placeholder refined at render time.
const compiledBeatDurationSec = 12.0

// maxKeywordsPerScene bounds the compiled keyword list.
const maxKeywordsPerScene = 8

// Compile builds a plan deterministically from beat segmentation alone.
// It never fails: an empty narration yields a single scene carrying the
// topic itself, so downstream stages always receive a valid plan.
func Compile(topic, narration string) *shotplan.Plan {
	topic = strings.TrimSpace(topic)
	beats := segmentBeats(narration)
	if len(beats) == 0 {
		beats = []string{topic}
	}

	plan := &shotplan.Plan{EpisodeTopic: topic}
	cursor := 0.0
	for i, beat := range beats {
		plan.Scenes = append(plan.Scenes, shotplan.Scene{
			SceneID:           sceneID(i),
			StartSec:          cursor,
			EndSec:            cursor + compiledBeatDurationSec,
			NarrationBlockIDs: []string{blockID(i)},
			Narration:         beat,
			Keywords:          beatKeywords(beat, topic),
			SearchQueries:     beatQueries(beat, topic),
			ShotStrategy:      shotplan.ShotStrategy{ShotTypes: []string{"action", "portrait"}},
		})
		cursor += compiledBeatDurationSec
	}
	return plan
}

// segmentBeats splits narration into beats: paragraphs when present,
// otherwise pairs of sentences.
func segmentBeats(narration string) []string {
	narration = strings.TrimSpace(narration)
	if narration == "" {
		return nil
	}
	paragraphs := splitNonEmpty(narration, "\n\n")
	if len(paragraphs) > 1 {
		return paragraphs
	}
	sentences := splitSentences(narration)
	if len(sentences) <= 1 {
		return []string{narration}
	}
	beats := make([]string, 0, (len(sentences)+1)/2)
	for i := 0; i < len(sentences); i += 2 {
		end := i + 2
		if end > len(sentences) {
			end = len(sentences)
		}
		beats = append(beats, strings.Join(sentences[i:end], " "))
	}
	return beats
}

func splitNonEmpty(text, sep string) []string {
	var out []string
	for _, part := range strings.Split(text, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// beatKeywords merges the beat's strong anchors with its most salient weak
// tokens, lowercased the way shot plans carry keywords.
func beatKeywords(beat, topic string) []string {
	anchors := relevance.ExtractAnchors(beat, nil)
	keywords := make([]string, 0, maxKeywordsPerScene)
	seen := make(map[string]bool)
	add := func(token string) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || seen[token] || len(keywords) >= maxKeywordsPerScene {
			return
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	for _, anchor := range anchors.Strong {
		add(anchor)
	}
	for _, token := range textutil.Tokenize(topic) {
		add(token)
	}
	for _, token := range anchors.Weak {
		add(token)
	}
	return keywords
}

// beatQueries emits two queries per beat, each carrying an anchor and a
// media-intent token so they pass the guardrail without repair.
func beatQueries(beat, topic string) []string {
	anchor := strongestPhrase(beat)
	if anchor == "" {
		anchor = titleCaser.String(firstToken(topic))
	}
	if anchor == "" {
		return nil
	}
	queries := []string{anchor + " archival footage"}
	if year := firstYear(beat); year != "" {
		queries = append(queries, anchor+" "+year+" photograph")
	} else {
		queries = append(queries, anchor+" photograph")
	}
	return queries
}

// strongestPhrase returns the beat's leading run of capitalized words, so
// multi-word names ("Grande Armee") survive as one anchor phrase.
func strongestPhrase(beat string) string {
	words := textutil.Words(beat)
	for i := 0; i < len(words); i++ {
		if !textutil.IsCapitalized(words[i]) || textutil.IsYearToken(words[i]) || i == 0 {
			continue
		}
		phrase := []string{words[i]}
		for j := i + 1; j < len(words) && textutil.IsCapitalized(words[j]); j++ {
			phrase = append(phrase, words[j])
		}
		return strings.Join(phrase, " ")
	}
	// Fall back to the sentence-leading word when it is the only capital.
	if len(words) > 0 && textutil.IsCapitalized(words[0]) && !textutil.IsYearToken(words[0]) {
		return words[0]
	}
	return ""
}

func firstYear(text string) string {
	for _, word := range textutil.Words(text) {
		if textutil.IsYearToken(word) {
			return word
		}
	}
	return ""
}

func firstToken(text string) string {
	words := textutil.Words(text)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}
