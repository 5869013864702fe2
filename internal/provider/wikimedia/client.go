package wikimedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"shotscout/internal/provider"
)

// Client provides access to the Wikimedia Commons MediaWiki API.
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

// New creates a Wikimedia Commons search client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("wikimedia base url required")
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
func (c *Client) Name() string { return provider.SourceWikimedia }

// Search runs a generator=search query restricted to the File namespace,
// using the filetype qualifier to filter media type server-side. The pages
// object is keyed by dynamic page ids, so the payload is walked with gjson
// rather than fixed structs.
func (c *Client) Search(ctx context.Context, req provider.Request) ([]provider.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	search := req.Query
	switch req.MediaType {
	case provider.MediaVideo:
		search += " filetype:video"
	case provider.MediaImage:
		search += " filetype:bitmap|drawing"
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", search)
	params.Set("gsrnamespace", "6")
	params.Set("gsrlimit", strconv.Itoa(req.MaxResults))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|mime|extmetadata")
	params.Set("iiurlwidth", "320")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build wikimedia request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "shotscout/1.0 (asset resolution pipeline)")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("wikimedia search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikimedia search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read wikimedia response: %w", err)
	}
	return parseSearchResponse(body), nil
}

// page holds one parsed result before rank ordering.
type page struct {
	index     int
	candidate provider.Candidate
}

func parseSearchResponse(body []byte) []provider.Candidate {
	pagesResult := gjson.GetBytes(body, "query.pages")
	if !pagesResult.Exists() {
		return nil
	}

	pages := make([]page, 0)
	pagesResult.ForEach(func(_, value gjson.Result) bool {
		title := value.Get("title").String()
		info := value.Get("imageinfo.0")
		if !info.Exists() {
			return true
		}
		mediaType := provider.MediaImage
		if strings.HasPrefix(info.Get("mime").String(), "video/") {
			mediaType = provider.MediaVideo
		}
		pages = append(pages, page{
			index: int(value.Get("index").Int()),
			candidate: provider.Candidate{
				Source:      provider.SourceWikimedia,
				ItemID:      strings.TrimPrefix(title, "File:"),
				URL:         info.Get("url").String(),
				MediaType:   mediaType,
				Thumbnail:   info.Get("thumburl").String(),
				Title:       strings.TrimPrefix(title, "File:"),
				Description: descriptionText(info.Get("extmetadata.ImageDescription.value").String()),
			},
		})
		return true
	})

	// The generator returns pages in arbitrary map order; index carries the
	// search ranking.
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })

	candidates := make([]provider.Candidate, 0, len(pages))
	for i, p := range pages {
		p.candidate.Rank = i + 1
		candidates = append(candidates, p.candidate)
	}
	return candidates
}
