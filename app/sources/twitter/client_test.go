package twitter

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

const searchFixture = `{
	"data": [
		{"id": "111", "text": "Huge announcement dropping today #TechNews", "created_at": "2025-06-01T12:00:00Z",
		 "public_metrics": {"retweet_count": 4000, "reply_count": 800, "like_count": 12000},
		 "entities": {"hashtags": [{"tag": "TechNews"}]}},
		{"id": "222", "text": "lol look at this #funnymeme", "created_at": "2025-06-01T11:00:00Z",
		 "public_metrics": {"retweet_count": 50, "reply_count": 5, "like_count": 100},
		 "entities": {"hashtags": [{"tag": "funnymeme"}]}}
	]
}`

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Expected bearer auth, got '%s'", r.Header.Get("Authorization"))
		}
		w.Header().Set("x-rate-limit-remaining", "449")
		w.Header().Set("x-rate-limit-reset", "1900000000")
		w.Write([]byte(searchFixture))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "tweet-111" {
		t.Errorf("Expected ID 'tweet-111', got '%s'", first.ID)
	}
	if first.PostCount != 16000 {
		t.Errorf("Expected engagement 16000 (retweets+likes), got %d", first.PostCount)
	}
	if first.Hashtag != "#TechNews" {
		t.Errorf("Expected hashtag '#TechNews', got '%s'", first.Hashtag)
	}
	if first.ContentType != viral.ContentTweet {
		t.Errorf("Expected tweet content type, got '%s'", first.ContentType)
	}
	if events[1].ContentType != viral.ContentMeme {
		t.Errorf("Meme hashtag should classify as meme, got '%s'", events[1].ContentType)
	}

	status := client.RateLimitStatus()
	if status.Remaining != 449 {
		t.Errorf("Expected remaining 449 from headers, got %d", status.Remaining)
	}
}

func TestClient_Fetch_MinScoreFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchFixture))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{MinScore: 1000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event above min score, got %d", len(events))
	}
	if events[0].ID != "tweet-111" {
		t.Errorf("Expected high-engagement tweet to survive, got '%s'", events[0].ID)
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

func TestClient_Fetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-remaining", "0")
		w.Header().Set("x-rate-limit-reset", "1900000000")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), sources.FetchParams{})
	var rateErr *sources.RateLimitedError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Expected RateLimitedError, got %v", err)
	}
	if rateErr.ResetAt.IsZero() {
		t.Error("Reset time should come from the rate limit headers")
	}
}

func TestClient_Fetch_EmojiTitleStaysValidUTF8(t *testing.T) {
	// 1 ASCII byte plus 40 four-byte runes puts the 120-byte cap inside
	// a rune sequence.
	text := "a" + strings.Repeat("\U0001F389", 40)
	fixture := fmt.Sprintf(`{"data": [
		{"id": "333", "text": %q, "created_at": "2025-06-01T10:00:00Z",
		 "public_metrics": {"retweet_count": 10, "reply_count": 1, "like_count": 20}}
	]}`, text)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	title := events[0].Title
	if len(title) > 120 {
		t.Errorf("Expected title capped at 120 bytes, got %d", len(title))
	}
	if !utf8.ValidString(title) {
		t.Error("Truncated title must remain valid UTF-8")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := "a" + strings.Repeat("\U0001F642", 40)
	got := truncate(s, 120)
	if len(got) > 120 {
		t.Errorf("Expected at most 120 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("Cut must land on a rune boundary")
	}
	if truncate("short", 120) != "short" {
		t.Error("Strings under the cap must pass through unchanged")
	}
}

func TestClassify_MediaIsVideo(t *testing.T) {
	tw := tweet{}
	tw.Attachments.MediaKeys = []string{"3_123"}
	if classify(tw) != viral.ContentVideo {
		t.Error("Tweet with media attachment should classify as video")
	}
}
