package europeana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shotscout/internal/provider"
)

// response models the Europeana Search API payload.
type response struct {
	Success      bool   `json:"success"`
	TotalResults int    `json:"totalResults"`
	Items        []item `json:"items"`
}

type item struct {
	ID           string   `json:"id"`
	Title        []string `json:"title"`
	DcCreator    []string `json:"dcCreator"`
	Type         string   `json:"type"` // IMAGE, VIDEO, TEXT, SOUND, 3D
	GUID         string   `json:"guid"`
	EdmPreview   []string `json:"edmPreview"`
	EdmIsShownAt []string `json:"edmIsShownAt"`
}

// Client provides access to the Europeana Search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Europeana search client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("europeana api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("europeana base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements provider.Provider.
func (c *Client) Name() string { return provider.SourceEuropeana }

// Search queries the Search API, filtering media type with a TYPE qualifier.
func (c *Client) Search(ctx context.Context, req provider.Request) ([]provider.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse europeana url: %w", err)
	}

	params := url.Values{}
	params.Set("wskey", c.apiKey)
	params.Set("query", req.Query)
	params.Set("rows", strconv.Itoa(req.MaxResults))
	params.Set("profile", "standard")
	switch req.MediaType {
	case provider.MediaVideo:
		params.Add("qf", "TYPE:VIDEO")
	case provider.MediaImage:
		params.Add("qf", "TYPE:IMAGE")
	default:
		params.Add("qf", "TYPE:(IMAGE OR VIDEO)")
	}
	params.Add("qf", "RIGHTS:*creative*")
	endpoint.RawQuery = params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build europeana request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("europeana search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("europeana search: unexpected status %d", resp.StatusCode)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode europeana response: %w", err)
	}
	if !payload.Success {
		return nil, errors.New("europeana search: api reported failure")
	}

	candidates := make([]provider.Candidate, 0, len(payload.Items))
	for i, it := range payload.Items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			continue
		}
		mediaType := provider.MediaImage
		if strings.EqualFold(it.Type, "VIDEO") {
			mediaType = provider.MediaVideo
		}
		candidate := provider.Candidate{
			Source:    provider.SourceEuropeana,
			ItemID:    id,
			URL:       it.GUID,
			MediaType: mediaType,
			Title:     firstNonEmpty(it.Title),
			Rank:      i + 1,
		}
		if candidate.URL == "" {
			candidate.URL = firstNonEmpty(it.EdmIsShownAt)
		}
		candidate.Thumbnail = firstNonEmpty(it.EdmPreview)
		if creator := firstNonEmpty(it.DcCreator); creator != "" {
			candidate.Description = creator
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func firstNonEmpty(values []string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
