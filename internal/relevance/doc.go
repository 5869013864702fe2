// Package relevance filters raw search candidates against the scene that
// asked for them. The anchor gate compares candidate metadata with the
// strong anchors (proper nouns, years) extracted from scene narration and
// keywords; the topic validator rejects candidates that share a name with
// the episode subject but drift semantically.
package relevance
