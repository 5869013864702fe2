package provider

import (
	"context"
	"errors"
	"strings"
)

// Media types for candidate assets.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Source identifiers.
const (
	SourceArchiveOrg = "archive.org"
	SourceWikimedia  = "wikimedia"
	SourceEuropeana  = "europeana"
	SourceLocal      = "local"
)

// Request describes one provider search call.
type Request struct {
	Query      string
	MediaType  string
	MaxResults int
}

// Candidate is a search result reference. It exists only until it is curated
// or rejected; it never owns media bytes.
type Candidate struct {
	Source      string `json:"source"`
	ItemID      string `json:"item_id"`
	URL         string `json:"url"`
	MediaType   string `json:"media_type"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank"` // 1-based position in the provider's result order
	QueryID     string `json:"query_id,omitempty"`
}

// Provider is a single external search source. Implementations must apply
// media-type filtering at the query level where the provider supports it,
// and must honor the context deadline.
type Provider interface {
	Name() string
	Search(ctx context.Context, req Request) ([]Candidate, error)
}

// Validate checks a request before it reaches an adapter.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("provider request: empty query")
	}
	switch r.MediaType {
	case MediaImage, MediaVideo, "":
	default:
		return errors.New("provider request: unsupported media type " + r.MediaType)
	}
	if r.MaxResults <= 0 {
		return errors.New("provider request: max results must be positive")
	}
	return nil
}
