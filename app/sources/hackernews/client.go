package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const defaultBaseURL = "https://hn.algolia.com"

// ClientOption configures the Client.
type ClientOption func(*Client)

func WithHTTPClient(httpClient sources.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// Client fetches stories through the Algolia HN search API. No credentials;
// Algolia enforces a 10k requests/hour IP limit without exposing quota
// headers, so the counter here is a local estimate.
type Client struct {
	baseURL    string
	httpClient sources.HTTPClient

	mu        sync.Mutex
	rateLimit sources.RateLimitStatus
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rateLimit:  sources.RateLimitStatus{Remaining: 10000, ResetAt: time.Now().Add(time.Hour)},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return sources.TypeHackerNews
}

func (c *Client) Configured() bool {
	return true
}

func (c *Client) RateLimitStatus() sources.RateLimitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// Fetch retrieves front-page stories, or search results when params.Query is
// set. MinScore maps to an Algolia numeric filter so filtering happens
// upstream.
func (c *Client) Fetch(ctx context.Context, params sources.FetchParams) ([]viral.Event, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 25
	}

	query := url.Values{}
	query.Set("hitsPerPage", fmt.Sprintf("%d", limit))
	if params.Query != "" {
		query.Set("query", params.Query)
		query.Set("tags", "story")
	} else {
		query.Set("tags", "front_page")
	}
	if params.MinScore > 0 {
		query.Set("numericFilters", fmt.Sprintf("points>=%d", params.MinScore))
	}

	requestURL := fmt.Sprintf("%s/api/v1/search?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stories: %w", err)
	}
	defer resp.Body.Close()

	c.consumeQuota()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.StatusError(c.Name(), resp.StatusCode, c.RateLimitStatus().ResetAt)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	events := make([]viral.Event, 0, len(response.Hits))
	for _, hit := range response.Hits {
		if hit.Title == "" {
			continue
		}

		link := hit.URL
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID)
		}

		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			publishedAt = &t
		}

		events = append(events, viral.Event{
			ID:          "hn-" + hit.ObjectID,
			SourceID:    hit.ObjectID,
			SourceType:  c.Name(),
			Title:       hit.Title,
			URL:         link,
			PostCount:   hit.Points,
			Hashtag:     "#HackerNews",
			ContentType: classify(hit),
			ViralScore:  float64(hit.Points) + 1.5*float64(hit.NumComments),
			PublishedAt: publishedAt,
		})
	}

	return events, nil
}

func (c *Client) consumeQuota() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.After(c.rateLimit.ResetAt) {
		c.rateLimit = sources.RateLimitStatus{Remaining: 10000, ResetAt: now.Add(time.Hour)}
	}
	if c.rateLimit.Remaining > 0 {
		c.rateLimit.Remaining--
	}
}

// classify marks video-host links as video, discussion-only posts (Ask HN,
// Show HN without a URL) as trends and the rest as news.
func classify(hit algoliaHit) viral.ContentType {
	lower := strings.ToLower(hit.URL)
	for _, host := range []string{"youtube.com", "youtu.be", "vimeo.com"} {
		if strings.Contains(lower, host) {
			return viral.ContentVideo
		}
	}
	if hit.URL == "" {
		return viral.ContentTrend
	}
	return viral.ContentNews
}

// API response types (private - implementation detail)

type searchResponse struct {
	Hits []algoliaHit `json:"hits"`
}

type algoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAt   string `json:"created_at"`
}
