package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const defaultBaseURL = "https://api.twitter.com"

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

// Client searches recent tweets through the X API v2. Requires a bearer
// token. Quota is read from the x-rate-limit-* response headers.
type Client struct {
	bearerToken string
	baseURL     string
	httpClient  sources.HTTPClient

	mu        sync.Mutex
	rateLimit sources.RateLimitStatus
}

func NewClient(bearerToken string, opts ...ClientOption) *Client {
	c := &Client{
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimit:   sources.RateLimitStatus{Remaining: 450},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return sources.TypeTwitter
}

func (c *Client) Configured() bool {
	return c.bearerToken != ""
}

func (c *Client) RateLimitStatus() sources.RateLimitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// Fetch searches recent tweets. The default query targets high-engagement
// English posts excluding retweets.
func (c *Client) Fetch(ctx context.Context, params sources.FetchParams) ([]viral.Event, error) {
	if !c.Configured() {
		return nil, &sources.NotConfiguredError{Source: c.Name()}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 25
	}
	searchQuery := params.Query
	if searchQuery == "" {
		searchQuery = "lang:en -is:retweet"
	}

	query := url.Values{}
	query.Set("query", searchQuery)
	query.Set("max_results", fmt.Sprintf("%d", limit))
	query.Set("tweet.fields", "public_metrics,entities,created_at,attachments")

	requestURL := fmt.Sprintf("%s/2/tweets/search/recent?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search tweets: %w", err)
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

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	events := make([]viral.Event, 0, len(response.Data))
	for _, tweet := range response.Data {
		engagement := tweet.PublicMetrics.RetweetCount + tweet.PublicMetrics.LikeCount
		if params.MinScore > 0 && engagement < params.MinScore {
			continue
		}

		title := truncate(tweet.Text, 120)

		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
			publishedAt = &t
		}

		events = append(events, viral.Event{
			ID:          "tweet-" + tweet.ID,
			SourceID:    tweet.ID,
			SourceType:  c.Name(),
			Title:       title,
			Summary:     tweet.Text,
			URL:         "https://twitter.com/i/status/" + tweet.ID,
			PostCount:   engagement,
			Hashtag:     firstHashtag(tweet),
			ContentType: classify(tweet),
			ViralScore:  float64(engagement) + 0.5*float64(tweet.PublicMetrics.ReplyCount),
			PublishedAt: publishedAt,
		})
	}

	return events, nil
}

func (c *Client) updateRateLimit(header http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := header.Get("x-rate-limit-remaining"); remaining != "" {
		if v, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = v
		}
	}
	if reset := header.Get("x-rate-limit-reset"); reset != "" {
		if v, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimit.ResetAt = time.Unix(v, 0)
		}
	}
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

// classify reads a tweet with media attachments as video, joke-adjacent
// hashtags as meme and everything else as tweet.
func classify(t tweet) viral.ContentType {
	if len(t.Attachments.MediaKeys) > 0 {
		return viral.ContentVideo
	}
	for _, h := range t.Entities.Hashtags {
		lower := strings.ToLower(h.Tag)
		if strings.Contains(lower, "meme") || strings.Contains(lower, "funny") {
			return viral.ContentMeme
		}
	}
	return viral.ContentTweet
}

func firstHashtag(t tweet) string {
	if len(t.Entities.Hashtags) == 0 {
		return ""
	}
	return "#" + t.Entities.Hashtags[0].Tag
}

// API response types (private - implementation detail)

type searchResponse struct {
	Data []tweet `json:"data"`
}

type tweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
		LikeCount    int `json:"like_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
	Entities struct {
		Hashtags []struct {
			Tag string `json:"tag"`
		} `json:"hashtags"`
	} `json:"entities"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}
