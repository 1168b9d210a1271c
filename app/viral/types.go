package viral

import (
	"time"
)

// DateFormat is the calendar-day key used throughout the service. Buckets are
// keyed by the day an event was fetched, not the day it was published: the
// upstream endpoints used do not expose creation dates cheaply, so fetch-date
// attribution is a documented approximation.
const DateFormat = "2006-01-02"

type ContentType string

const (
	ContentTweet ContentType = "tweet"
	ContentNews  ContentType = "news"
	ContentMeme  ContentType = "meme"
	ContentVideo ContentType = "video"
	ContentTrend ContentType = "trend"
)

// Event is a single normalized viral/news item from one upstream source.
// Events are immutable after normalization; only TrendingRank is reassigned
// when the owning bucket is resorted.
type Event struct {
	ID           string      `json:"id"`
	SourceID     string      `json:"source_id"`
	SourceType   string      `json:"source_type"`
	Title        string      `json:"title"`
	Summary      string      `json:"summary"`
	URL          string      `json:"url"`
	PostCount    int         `json:"post_count"`
	Hashtag      string      `json:"hashtag,omitempty"`
	ContentType  ContentType `json:"content_type"`
	TrendingRank int         `json:"trending_rank"`
	ViralScore   float64     `json:"viral_score"`
	PublishedAt  *time.Time  `json:"published_at,omitempty"`
}

// Day returns the calendar-day key for t in local time.
func Day(t time.Time) string {
	return t.Format(DateFormat)
}

// Today returns the calendar-day key for the current fetch date.
func Today() string {
	return Day(time.Now())
}
