package archiveorg

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

const itemBaseURL = "https://archive.org/details/"

// response models the advancedsearch JSON payload.
type response struct {
	Response struct {
		NumFound int   `json:"numFound"`
		Docs     []doc `json:"docs"`
	} `json:"response"`
}

type doc struct {
	Identifier  string      `json:"identifier"`
	Title       string      `json:"title"`
	Description rawText     `json:"description"`
	MediaType   string      `json:"mediatype"`
	Downloads   json.Number `json:"downloads"`
}

// rawText absorbs fields archive.org returns as either a string or a list
// of strings.
type rawText string

func (t *rawText) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = rawText(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*t = rawText(strings.Join(many, " "))
		return nil
	}
	*t = ""
	return nil
}

// Client provides access to the archive.org advancedsearch API.
type Client struct {
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

// New creates an archive.org search client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("archive.org base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements provider.Provider.
func (c *Client) Name() string { return provider.SourceArchiveOrg }

// Search queries the advancedsearch endpoint. Media-type filtering happens
// in the query itself via the mediatype field rather than post-hoc.
func (c *Client) Search(ctx context.Context, req provider.Request) ([]provider.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse archive.org url: %w", err)
	}

	query := fmt.Sprintf("(%s)", req.Query)
	switch req.MediaType {
	case provider.MediaVideo:
		query += ` AND mediatype:(movies)`
	case provider.MediaImage:
		query += ` AND mediatype:(image)`
	default:
		query += ` AND mediatype:(movies OR image)`
	}

	params := url.Values{}
	params.Set("q", query)
	params.Add("fl[]", "identifier")
	params.Add("fl[]", "title")
	params.Add("fl[]", "description")
	params.Add("fl[]", "mediatype")
	params.Add("fl[]", "downloads")
	params.Set("rows", strconv.Itoa(req.MaxResults))
	params.Set("page", "1")
	params.Set("output", "json")
	endpoint.RawQuery = params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build archive.org request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("archive.org search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive.org search: unexpected status %d", resp.StatusCode)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode archive.org response: %w", err)
	}

	candidates := make([]provider.Candidate, 0, len(payload.Response.Docs))
	for i, d := range payload.Response.Docs {
		id := strings.TrimSpace(d.Identifier)
		if id == "" {
			continue
		}
		mediaType := provider.MediaImage
		if strings.EqualFold(d.MediaType, "movies") {
			mediaType = provider.MediaVideo
		}
		candidates = append(candidates, provider.Candidate{
			Source:      provider.SourceArchiveOrg,
			ItemID:      id,
			URL:         itemBaseURL + id,
			MediaType:   mediaType,
			Thumbnail:   "https://archive.org/services/img/" + id,
			Title:       strings.TrimSpace(d.Title),
			Description: strings.TrimSpace(string(d.Description)),
			Rank:        i + 1,
		})
	}
	return candidates, nil
}
