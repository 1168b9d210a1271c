package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const listingFixture = `{
	"data": {
		"children": [
			{"data": {"id": "abc", "title": "Big Story", "subreddit": "worldnews", "permalink": "/r/worldnews/comments/abc/big_story/", "score": 5400, "num_comments": 320, "post_hint": "link"}},
			{"data": {"id": "def", "title": "Funny Picture", "subreddit": "pics", "permalink": "/r/pics/comments/def/funny_picture/", "url": "https://i.redd.it/xyz.jpg", "score": 90, "num_comments": 12, "post_hint": "image"}}
		]
	}
}`

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/worldnews/top.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("t") != "week" {
			t.Errorf("Expected timeframe 'week', got '%s'", r.URL.Query().Get("t"))
		}
		if r.Header.Get("User-Agent") != "viralcal/1.0" {
			t.Errorf("Expected custom user agent, got '%s'", r.Header.Get("User-Agent"))
		}
		w.Header().Set("X-Ratelimit-Remaining", "57.0")
		w.Header().Set("X-Ratelimit-Reset", "120")
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	client := NewClient("viralcal/1.0", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{Subreddit: "worldnews", Timeframe: "week"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "reddit-abc" {
		t.Errorf("Expected ID 'reddit-abc', got '%s'", first.ID)
	}
	if first.SourceType != sources.TypeReddit {
		t.Errorf("Expected source type reddit, got '%s'", first.SourceType)
	}
	if first.PostCount != 5400 {
		t.Errorf("Expected post count 5400, got %d", first.PostCount)
	}
	if first.Hashtag != "#worldnews" {
		t.Errorf("Expected hashtag '#worldnews', got '%s'", first.Hashtag)
	}
	if first.ContentType != viral.ContentNews {
		t.Errorf("Expected news content type, got '%s'", first.ContentType)
	}
	if first.ViralScore != 5400+2*320 {
		t.Errorf("Expected viral score %d, got %f", 5400+2*320, first.ViralScore)
	}

	if events[1].ContentType != viral.ContentMeme {
		t.Errorf("Image post should classify as meme, got '%s'", events[1].ContentType)
	}

	status := client.RateLimitStatus()
	if status.Remaining != 57 {
		t.Errorf("Expected 57 remaining, got %d", status.Remaining)
	}
	if status.ResetAt.IsZero() {
		t.Error("Reset time should be set from headers")
	}
}

func TestClient_Fetch_MinScoreFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	client := NewClient("viralcal/1.0", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{MinScore: 100})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event above min score, got %d", len(events))
	}
	if events[0].ID != "reddit-abc" {
		t.Errorf("Expected high-score event to survive, got '%s'", events[0].ID)
	}
}

func TestClient_Fetch_EmptyListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"children": []}}`))
	}))
	defer server.Close()

	client := NewClient("viralcal/1.0", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{})
	if err != nil {
		t.Fatalf("Empty results should not error, got: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected 0 events, got %d", len(events))
	}
}

func TestClient_Fetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Reset", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("viralcal/1.0", WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), sources.FetchParams{})
	var rateErr *sources.RateLimitedError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Expected RateLimitedError, got %v", err)
	}
	if rateErr.Source != sources.TypeReddit {
		t.Errorf("Expected source reddit, got '%s'", rateErr.Source)
	}
}

func TestClient_Fetch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("viralcal/1.0", WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), sources.FetchParams{})
	var upstreamErr *sources.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if !upstreamErr.Retriable() {
		t.Error("5xx errors should be retriable")
	}
}

func TestClient_Fetch_NotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.Fetch(context.Background(), sources.FetchParams{})
	var notConfigured *sources.NotConfiguredError
	if !errors.As(err, &notConfigured) {
		t.Fatalf("Expected NotConfiguredError, got %v", err)
	}
}

func TestClient_Fetch_EmojiSelfTextStaysValidUTF8(t *testing.T) {
	// 1 ASCII byte plus 130 four-byte runes puts the 500-byte cap inside
	// a rune sequence.
	selfText := "a" + strings.Repeat("\U0001F525", 130)
	fixture := fmt.Sprintf(`{"data": {"children": [
		{"data": {"id": "ghi", "title": "Emoji Story", "selftext": %q, "subreddit": "worldnews", "permalink": "/r/worldnews/comments/ghi/emoji_story/", "score": 1200, "num_comments": 40}}
	]}}`, selfText)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer server.Close()

	client := NewClient("viralcal/1.0", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	summary := events[0].Summary
	if len(summary) > 500 {
		t.Errorf("Expected summary capped at 500 bytes, got %d", len(summary))
	}
	if !utf8.ValidString(summary) {
		t.Error("Truncated summary must remain valid UTF-8")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := "a" + strings.Repeat("\U0001F642", 130)
	got := truncate(s, 500)
	if len(got) > 500 {
		t.Errorf("Expected at most 500 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("Cut must land on a rune boundary")
	}
	if truncate("short", 500) != "short" {
		t.Error("Strings under the cap must pass through unchanged")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		post     post
		expected viral.ContentType
	}{
		{"video flag", post{IsVideo: true}, viral.ContentVideo},
		{"hosted video hint", post{PostHint: "hosted:video"}, viral.ContentVideo},
		{"image hint", post{PostHint: "image"}, viral.ContentMeme},
		{"imgur link", post{URL: "https://i.imgur.com/a.png"}, viral.ContentMeme},
		{"news subreddit", post{Subreddit: "WorldNews"}, viral.ContentNews},
		{"default", post{Subreddit: "askreddit"}, viral.ContentTrend},
	}

	for _, c := range cases {
		if got := classify(c.post); got != c.expected {
			t.Errorf("%s: expected %s, got %s", c.name, c.expected, got)
		}
	}
}
