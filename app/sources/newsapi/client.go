package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const defaultBaseURL = "https://newsapi.org"

// NewsAPI exposes no engagement counters, so headline position acts as the
// engagement proxy: the top headline gets rankBaseline and each subsequent
// article steps down by rankStep.
const (
	rankBaseline = 1000
	rankStep     = 25
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

// Client fetches top headlines from NewsAPI. Requires an API key; the free
// tier allows 100 requests/day and reports no quota headers, so the counter
// is a local estimate.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient sources.HTTPClient

	mu        sync.Mutex
	rateLimit sources.RateLimitStatus
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rateLimit:  sources.RateLimitStatus{Remaining: 100, ResetAt: endOfDay()},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return sources.TypeNewsAPI
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) RateLimitStatus() sources.RateLimitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// Fetch retrieves top headlines, optionally narrowed by params.Query.
func (c *Client) Fetch(ctx context.Context, params sources.FetchParams) ([]viral.Event, error) {
	if !c.Configured() {
		return nil, &sources.NotConfiguredError{Source: c.Name()}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	query := url.Values{}
	query.Set("language", "en")
	query.Set("pageSize", fmt.Sprintf("%d", limit))
	if params.Query != "" {
		query.Set("q", params.Query)
	}

	requestURL := fmt.Sprintf("%s/v2/top-headlines?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headlines: %w", err)
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

	var response headlinesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse headlines response: %w", err)
	}

	events := make([]viral.Event, 0, len(response.Articles))
	for i, article := range response.Articles {
		if article.Title == "" || article.URL == "" {
			continue
		}

		postCount := rankBaseline - i*rankStep
		if postCount < rankStep {
			postCount = rankStep
		}
		if params.MinScore > 0 && postCount < params.MinScore {
			continue
		}

		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
			publishedAt = &t
		}

		events = append(events, viral.Event{
			ID:          "newsapi-" + hashURL(article.URL),
			SourceID:    hashURL(article.URL),
			SourceType:  c.Name(),
			Title:       article.Title,
			Summary:     article.Description,
			URL:         article.URL,
			PostCount:   postCount,
			Hashtag:     sourceHashtag(article.Source.Name),
			ContentType: classify(article),
			ViralScore:  float64(postCount),
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
		c.rateLimit = sources.RateLimitStatus{Remaining: 100, ResetAt: endOfDay()}
	}
	if c.rateLimit.Remaining > 0 {
		c.rateLimit.Remaining--
	}
}

func endOfDay() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// classify marks articles whose link points at a video host as video;
// everything else NewsAPI serves is news.
func classify(a article) viral.ContentType {
	lower := strings.ToLower(a.URL)
	for _, host := range []string{"youtube.com", "youtu.be"} {
		if strings.Contains(lower, host) {
			return viral.ContentVideo
		}
	}
	return viral.ContentNews
}

func sourceHashtag(sourceName string) string {
	if sourceName == "" {
		return "#News"
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '.' {
			return -1
		}
		return r
	}, sourceName)
	return "#" + cleaned
}

// hashURL produces a stable source ID from the article URL. NewsAPI has no
// item IDs, and the URL is the only stable identity an article carries.
func hashURL(u string) string {
	h := fnv.New64a()
	h.Write([]byte(u))
	return fmt.Sprintf("%x", h.Sum64())
}

// API response types (private - implementation detail)

type headlinesResponse struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}
