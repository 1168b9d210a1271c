package viral

import (
	"strings"
)

// NewsFilter is the news-only policy filter shared by the aggregator and the
// historical importer. An event passes when its content type is news or its
// hashtag contains one of the configured substrings. The substring list is
// policy, not correctness, and is therefore injectable.
type NewsFilter struct {
	hashtagHints []string
}

func NewNewsFilter() *NewsFilter {
	return &NewsFilter{
		hashtagHints: []string{"news", "breaking", "politic", "world", "update"},
	}
}

func NewNewsFilterWithHints(hints []string) *NewsFilter {
	return &NewsFilter{hashtagHints: hints}
}

// Match reports whether a single event qualifies as news.
func (f *NewsFilter) Match(e Event) bool {
	if e.ContentType == ContentNews {
		return true
	}
	hashtag := strings.ToLower(e.Hashtag)
	for _, hint := range f.hashtagHints {
		if hint != "" && strings.Contains(hashtag, hint) {
			return true
		}
	}
	return false
}

// Apply removes non-news events from every bucket and drops buckets that end
// up empty. Never increases any bucket's event count.
func (f *NewsFilter) Apply(buckets map[string]*DayBucket) map[string]*DayBucket {
	out := make(map[string]*DayBucket, len(buckets))
	for date, bucket := range buckets {
		kept := make([]Event, 0, len(bucket.Events))
		for _, e := range bucket.Events {
			if f.Match(e) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			continue
		}
		filtered := NewDayBucket(date)
		filtered.Events = kept
		filtered.Rerank()
		out[date] = filtered
	}
	return out
}
