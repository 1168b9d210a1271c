package viral

import (
	"sort"
)

// DayBucket is the set of events attributed to one calendar date plus derived
// summary fields. TopHashtag always mirrors the hashtag of the rank-1 event.
type DayBucket struct {
	Date            string  `json:"date"`
	Events          []Event `json:"events"`
	HasViralContent bool    `json:"has_viral_content"`
	TopHashtag      string  `json:"top_hashtag,omitempty"`
}

func NewDayBucket(date string) *DayBucket {
	return &DayBucket{Date: date}
}

// Add appends an event to the bucket unless an event with the same ID is
// already present, then resorts and reranks. Reports whether the event was
// added.
func (b *DayBucket) Add(e Event) bool {
	for _, existing := range b.Events {
		if existing.ID == e.ID {
			return false
		}
	}
	b.Events = append(b.Events, e)
	b.Rerank()
	return true
}

// Rerank sorts events by descending PostCount (stable, so arrival order breaks
// ties), assigns contiguous 1-based ranks and recomputes the derived fields.
func (b *DayBucket) Rerank() {
	sort.SliceStable(b.Events, func(i, j int) bool {
		return b.Events[i].PostCount > b.Events[j].PostCount
	})
	for i := range b.Events {
		b.Events[i].TrendingRank = i + 1
	}

	b.HasViralContent = len(b.Events) > 0
	if b.HasViralContent {
		b.TopHashtag = b.Events[0].Hashtag
	} else {
		b.TopHashtag = ""
	}
}

// Truncate keeps the top n events by rank. No-op when n <= 0 or the bucket is
// already within the limit.
func (b *DayBucket) Truncate(n int) {
	if n <= 0 || len(b.Events) <= n {
		return
	}
	b.Events = b.Events[:n]
	b.Rerank()
}

// TotalEngagement sums PostCount across the bucket.
func (b *DayBucket) TotalEngagement() int {
	total := 0
	for _, e := range b.Events {
		total += e.PostCount
	}
	return total
}
