package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const defaultBaseURL = "https://www.reddit.com"

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient sources.HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// Client fetches top posts from Reddit's public JSON listings. Reddit needs
// no credentials, only a descriptive User-Agent; requests without one get
// throttled aggressively.
type Client struct {
	userAgent  string
	baseURL    string
	httpClient sources.HTTPClient

	mu        sync.Mutex
	rateLimit sources.RateLimitStatus
}

func NewClient(userAgent string, opts ...ClientOption) *Client {
	c := &Client{
		userAgent:  userAgent,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rateLimit:  sources.RateLimitStatus{Remaining: 100},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return sources.TypeReddit
}

func (c *Client) Configured() bool {
	return c.userAgent != ""
}

func (c *Client) RateLimitStatus() sources.RateLimitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// Fetch retrieves a subreddit's top posts for a timeframe. Defaults: r/popular
// over the last day, 25 posts.
func (c *Client) Fetch(ctx context.Context, params sources.FetchParams) ([]viral.Event, error) {
	if !c.Configured() {
		return nil, &sources.NotConfiguredError{Source: c.Name()}
	}

	subreddit := params.Subreddit
	if subreddit == "" {
		subreddit = "popular"
	}
	timeframe := params.Timeframe
	if timeframe == "" {
		timeframe = "day"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 25
	}

	url := fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=%d&raw_json=1", c.baseURL, subreddit, timeframe, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subreddit %s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	c.updateRateLimit(resp.Header)

	if resp.StatusCode != http.StatusOK {
		return nil, sources.StatusError(c.Name(), resp.StatusCode, c.RateLimitStatus().ResetAt)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var listing listingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing response: %w", err)
	}

	events := make([]viral.Event, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if params.MinScore > 0 && post.Score < params.MinScore {
			continue
		}

		summary := truncate(post.SelfText, 500)

		events = append(events, viral.Event{
			ID:          "reddit-" + post.ID,
			SourceID:    post.ID,
			SourceType:  c.Name(),
			Title:       post.Title,
			Summary:     summary,
			URL:         "https://www.reddit.com" + post.Permalink,
			PostCount:   post.Score,
			Hashtag:     "#" + post.Subreddit,
			ContentType: classify(post),
			ViralScore:  float64(post.Score) + 2*float64(post.NumComments),
		})
	}

	return events, nil
}

// truncate caps s at max bytes, backing up so a multibyte rune is never
// split mid-sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Reddit reports remaining quota as a float string and reset as seconds until
// the window rolls over.
func (c *Client) updateRateLimit(header http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := header.Get("X-Ratelimit-Remaining"); remaining != "" {
		if v, err := strconv.ParseFloat(remaining, 64); err == nil {
			c.rateLimit.Remaining = int(v)
		}
	}
	if reset := header.Get("X-Ratelimit-Reset"); reset != "" {
		if v, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.ResetAt = time.Now().Add(time.Duration(v) * time.Second)
		}
	}
}

// API response types (private - implementation detail)

type listingResponse struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	PostHint    string  `json:"post_hint"`
	IsVideo     bool    `json:"is_video"`
	CreatedUTC  float64 `json:"created_utc"`
}
