package viral

import (
	"testing"
)

func TestTitleKey_Normalization(t *testing.T) {
	cases := []struct {
		title    string
		expected string
	}{
		{"Breaking News Today", "breakingnewstoday"},
		{"breaking news today!!", "breakingnewstoday"},
		{"BREAKING: News, Today?!", "breakingnewstoday"},
		{"", ""},
		{"!!!", ""},
	}

	for _, c := range cases {
		if got := TitleKey(c.title); got != c.expected {
			t.Errorf("TitleKey(%q): expected %q, got %q", c.title, c.expected, got)
		}
	}
}

func TestTitleKey_TruncatesLongTitles(t *testing.T) {
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" // 50 a's
	longer := long + "bbbbbbbb"

	if TitleKey(long) != TitleKey(longer) {
		t.Error("Titles sharing a 50-char prefix should produce the same key")
	}
	if len(TitleKey(longer)) != 50 {
		t.Errorf("Expected key length 50, got %d", len(TitleKey(longer)))
	}
}

func TestDedupByTitle_FirstSeenWins(t *testing.T) {
	events := []Event{
		{ID: "a", Title: "Breaking News Today", PostCount: 500},
		{ID: "b", Title: "breaking news today!!", PostCount: 300},
		{ID: "c", Title: "Something Else", PostCount: 100},
	}

	result := DedupByTitle(events)

	if len(result) != 2 {
		t.Fatalf("Expected 2 events after dedup, got %d", len(result))
	}
	if result[0].ID != "a" {
		t.Errorf("First occurrence should win, got %s", result[0].ID)
	}
	if result[1].ID != "c" {
		t.Errorf("Expected 'c' to survive, got %s", result[1].ID)
	}
}

func TestDedupByTitle_Idempotent(t *testing.T) {
	events := []Event{
		{ID: "a", Title: "One Story"},
		{ID: "b", Title: "one story"},
		{ID: "c", Title: "Another Story"},
	}

	once := DedupByTitle(events)
	twice := DedupByTitle(append(append([]Event{}, once...), once...))

	if len(once) != len(twice) {
		t.Errorf("Merging the same set twice should yield the same unique set: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("Expected %s at position %d, got %s", once[i].ID, i, twice[i].ID)
		}
	}
}
