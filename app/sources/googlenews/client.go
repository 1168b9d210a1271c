package googlenews

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const defaultBaseURL = "https://news.google.com"

// Position-based engagement proxy, same scheme as the NewsAPI client: RSS
// carries no engagement counters.
const (
	rankBaseline = 800
	rankStep     = 20
)

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

// Client fetches the Google News top stories RSS feed. Credential-free: it is
// the news fallback that keeps working when NewsAPI has no key configured.
type Client struct {
	baseURL    string
	httpClient sources.HTTPClient
	parser     *gofeed.Parser

	mu        sync.Mutex
	rateLimit sources.RateLimitStatus
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		parser:     gofeed.NewParser(),
		rateLimit:  sources.RateLimitStatus{Remaining: 1000, ResetAt: time.Now().Add(time.Hour)},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return sources.TypeGoogleNews
}

func (c *Client) Configured() bool {
	return true
}

func (c *Client) RateLimitStatus() sources.RateLimitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// Fetch retrieves top stories, or a topic search when params.Query is set.
func (c *Client) Fetch(ctx context.Context, params sources.FetchParams) ([]viral.Event, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	feedURL := fmt.Sprintf("%s/rss?hl=en-US&gl=US&ceid=US:en", c.baseURL)
	if params.Query != "" {
		feedURL = fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", c.baseURL, url.QueryEscape(params.Query))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	c.consumeQuota()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.StatusError(c.Name(), resp.StatusCode, c.RateLimitStatus().ResetAt)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	feed, err := c.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	events := make([]viral.Event, 0, len(feed.Items))
	for i, item := range feed.Items {
		if len(events) >= limit {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}

		postCount := rankBaseline - i*rankStep
		if postCount < rankStep {
			postCount = rankStep
		}
		if params.MinScore > 0 && postCount < params.MinScore {
			continue
		}

		title, outlet := splitOutlet(item.Title)

		events = append(events, viral.Event{
			ID:          "gnews-" + guid(item),
			SourceID:    guid(item),
			SourceType:  c.Name(),
			Title:       title,
			Summary:     item.Description,
			URL:         item.Link,
			PostCount:   postCount,
			Hashtag:     outletHashtag(outlet),
			ContentType: viral.ContentNews,
			ViralScore:  float64(postCount),
			PublishedAt: item.PublishedParsed,
		})
	}

	return events, nil
}

func (c *Client) consumeQuota() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.After(c.rateLimit.ResetAt) {
		c.rateLimit = sources.RateLimitStatus{Remaining: 1000, ResetAt: now.Add(time.Hour)}
	}
	if c.rateLimit.Remaining > 0 {
		c.rateLimit.Remaining--
	}
}

func guid(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// Google News titles carry the outlet as a " - Outlet" suffix.
func splitOutlet(title string) (string, string) {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return title[:idx], title[idx+3:]
	}
	return title, ""
}

func outletHashtag(outlet string) string {
	if outlet == "" {
		return "#TopStories"
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '.' {
			return -1
		}
		return r
	}, outlet)
	return "#" + cleaned
}
