package viral

import (
	"testing"
)

func TestNewsFilter_Match(t *testing.T) {
	filter := NewNewsFilter()

	cases := []struct {
		name     string
		event    Event
		expected bool
	}{
		{"news content type", Event{ContentType: ContentNews}, true},
		{"news hashtag", Event{ContentType: ContentTweet, Hashtag: "#WorldNews"}, true},
		{"breaking hashtag", Event{ContentType: ContentMeme, Hashtag: "#BreakingStory"}, true},
		{"unrelated meme", Event{ContentType: ContentMeme, Hashtag: "#funny"}, false},
		{"no hashtag", Event{ContentType: ContentVideo}, false},
	}

	for _, c := range cases {
		if got := filter.Match(c.event); got != c.expected {
			t.Errorf("%s: expected %v, got %v", c.name, c.expected, got)
		}
	}
}

func TestNewsFilter_Apply_RemovesNonNews(t *testing.T) {
	filter := NewNewsFilter()

	bucket := NewDayBucket("2025-06-01")
	bucket.Add(Event{ID: "a", Title: "A", PostCount: 500, ContentType: ContentNews, Hashtag: "#politics"})
	bucket.Add(Event{ID: "b", Title: "B", PostCount: 900, ContentType: ContentMeme, Hashtag: "#lol"})

	result := filter.Apply(map[string]*DayBucket{"2025-06-01": bucket})

	filtered, ok := result["2025-06-01"]
	if !ok {
		t.Fatal("Bucket with news content should survive")
	}
	if len(filtered.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(filtered.Events))
	}
	if filtered.Events[0].ID != "a" {
		t.Errorf("Expected news event 'a', got %s", filtered.Events[0].ID)
	}
	if filtered.Events[0].TrendingRank != 1 {
		t.Errorf("Surviving event should be reranked to 1, got %d", filtered.Events[0].TrendingRank)
	}
	if filtered.TopHashtag != "#politics" {
		t.Errorf("Expected top hashtag '#politics', got '%s'", filtered.TopHashtag)
	}
}

func TestNewsFilter_Apply_DropsEmptiedBuckets(t *testing.T) {
	filter := NewNewsFilter()

	memes := NewDayBucket("2025-06-02")
	memes.Add(Event{ID: "m", Title: "M", PostCount: 100, ContentType: ContentMeme})

	result := filter.Apply(map[string]*DayBucket{"2025-06-02": memes})

	if _, ok := result["2025-06-02"]; ok {
		t.Error("Bucket left with zero events should be dropped")
	}
}

func TestNewsFilter_Apply_NeverIncreasesCounts(t *testing.T) {
	filter := NewNewsFilter()

	bucket := NewDayBucket("2025-06-03")
	bucket.Add(Event{ID: "a", Title: "A", PostCount: 10, ContentType: ContentNews})
	bucket.Add(Event{ID: "b", Title: "B", PostCount: 20, ContentType: ContentNews})

	result := filter.Apply(map[string]*DayBucket{"2025-06-03": bucket})

	if len(result["2025-06-03"].Events) > len(bucket.Events) {
		t.Error("Filtering must never increase a bucket's event count")
	}
}
