package viral

import (
	"testing"
)

func TestDayBucket_Add_RanksDescending(t *testing.T) {
	bucket := NewDayBucket("2025-06-01")

	bucket.Add(Event{ID: "a", Title: "Low", PostCount: 100, Hashtag: "#low"})
	bucket.Add(Event{ID: "b", Title: "High", PostCount: 900, Hashtag: "#high"})
	bucket.Add(Event{ID: "c", Title: "Mid", PostCount: 500, Hashtag: "#mid"})

	if len(bucket.Events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(bucket.Events))
	}

	expectedOrder := []string{"b", "c", "a"}
	for i, id := range expectedOrder {
		if bucket.Events[i].ID != id {
			t.Errorf("Expected event %s at position %d, got %s", id, i, bucket.Events[i].ID)
		}
		if bucket.Events[i].TrendingRank != i+1 {
			t.Errorf("Expected rank %d at position %d, got %d", i+1, i, bucket.Events[i].TrendingRank)
		}
	}

	if !bucket.HasViralContent {
		t.Error("Bucket with events should have viral content")
	}
	if bucket.TopHashtag != "#high" {
		t.Errorf("Expected top hashtag '#high', got '%s'", bucket.TopHashtag)
	}
}

func TestDayBucket_Add_SkipsDuplicateIDs(t *testing.T) {
	bucket := NewDayBucket("2025-06-01")

	if !bucket.Add(Event{ID: "a", PostCount: 100}) {
		t.Error("First add should succeed")
	}
	if bucket.Add(Event{ID: "a", PostCount: 999}) {
		t.Error("Second add with same ID should be rejected")
	}

	if len(bucket.Events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(bucket.Events))
	}
	if bucket.Events[0].PostCount != 100 {
		t.Errorf("Original event should survive, got post count %d", bucket.Events[0].PostCount)
	}
}

func TestDayBucket_Rerank_StableOnTies(t *testing.T) {
	bucket := NewDayBucket("2025-06-01")
	bucket.Events = []Event{
		{ID: "first", PostCount: 500},
		{ID: "second", PostCount: 500},
		{ID: "third", PostCount: 500},
	}
	bucket.Rerank()

	expectedOrder := []string{"first", "second", "third"}
	for i, id := range expectedOrder {
		if bucket.Events[i].ID != id {
			t.Errorf("Tie break should preserve arrival order: expected %s at %d, got %s", id, i, bucket.Events[i].ID)
		}
	}
}

func TestDayBucket_Rerank_EmptyBucket(t *testing.T) {
	bucket := NewDayBucket("2025-06-01")
	bucket.Rerank()

	if bucket.HasViralContent {
		t.Error("Empty bucket should not have viral content")
	}
	if bucket.TopHashtag != "" {
		t.Errorf("Empty bucket should have no top hashtag, got '%s'", bucket.TopHashtag)
	}
}

func TestDayBucket_Truncate(t *testing.T) {
	bucket := NewDayBucket("2025-06-01")
	bucket.Add(Event{ID: "a", PostCount: 300})
	bucket.Add(Event{ID: "b", PostCount: 200})
	bucket.Add(Event{ID: "c", PostCount: 100})

	bucket.Truncate(2)

	if len(bucket.Events) != 2 {
		t.Fatalf("Expected 2 events after truncate, got %d", len(bucket.Events))
	}
	if bucket.Events[0].ID != "a" || bucket.Events[1].ID != "b" {
		t.Errorf("Truncate should keep the top ranked events, got %s, %s", bucket.Events[0].ID, bucket.Events[1].ID)
	}

	// Truncating beyond the current size is a no-op
	bucket.Truncate(10)
	if len(bucket.Events) != 2 {
		t.Errorf("Expected truncate beyond size to be a no-op, got %d events", len(bucket.Events))
	}
}

func TestDayBucket_TotalEngagement(t *testing.T) {
	bucket := NewDayBucket("2025-06-01")
	bucket.Add(Event{ID: "a", PostCount: 300})
	bucket.Add(Event{ID: "b", PostCount: 200})

	if total := bucket.TotalEngagement(); total != 500 {
		t.Errorf("Expected total engagement 500, got %d", total)
	}
}
