package googlenews

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Top stories - Google News</title>
    <item>
      <title>Markets Rally After Rate Cut - Reuters</title>
      <link>https://news.google.com/articles/one</link>
      <guid>guid-one</guid>
      <pubDate>Sun, 01 Jun 2025 08:00:00 GMT</pubDate>
      <description>Stocks climbed sharply.</description>
    </item>
    <item>
      <title>Storm Heads For Coast - BBC News</title>
      <link>https://news.google.com/articles/two</link>
      <guid>guid-two</guid>
      <pubDate>Sun, 01 Jun 2025 07:00:00 GMT</pubDate>
      <description>Evacuations ordered.</description>
    </item>
  </channel>
</rss>`

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	events, err := client.Fetch(context.Background(), sources.FetchParams{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "gnews-guid-one" {
		t.Errorf("Expected ID 'gnews-guid-one', got '%s'", first.ID)
	}
	if first.Title != "Markets Rally After Rate Cut" {
		t.Errorf("Outlet suffix should be stripped from the title, got '%s'", first.Title)
	}
	if first.Hashtag != "#Reuters" {
		t.Errorf("Expected hashtag '#Reuters', got '%s'", first.Hashtag)
	}
	if first.ContentType != viral.ContentNews {
		t.Errorf("Google News events are always news, got '%s'", first.ContentType)
	}
	if first.PostCount != 800 {
		t.Errorf("Top story should carry the baseline proxy, got %d", first.PostCount)
	}
	if first.PublishedAt == nil {
		t.Error("Expected published timestamp to be parsed")
	}
}

func TestClient_Fetch_QuerySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss/search" {
			t.Errorf("Query fetch should hit the search feed, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "elections" {
			t.Errorf("Expected query 'elections', got '%s'", r.URL.Query().Get("q"))
		}
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	if _, err := client.Fetch(context.Background(), sources.FetchParams{Query: "elections"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestClient_Fetch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), sources.FetchParams{})
	var upstreamErr *sources.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
}

func TestSplitOutlet(t *testing.T) {
	title, outlet := splitOutlet("Big Story - The Times")
	if title != "Big Story" || outlet != "The Times" {
		t.Errorf("Expected ('Big Story', 'The Times'), got (%q, %q)", title, outlet)
	}

	title, outlet = splitOutlet("No Outlet Here")
	if title != "No Outlet Here" || outlet != "" {
		t.Errorf("Title without outlet suffix should pass through, got (%q, %q)", title, outlet)
	}
}
