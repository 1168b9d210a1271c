package database

import (
	"time"
)

// EventRecord represents an event row in the database
type EventRecord struct {
	ID            string // Database UUID
	EventKey      string // Prefixed client event ID, e.g. "reddit-abc123"
	SourceID      string
	SourceType    string
	Title         string
	Summary       string
	URL           string
	PostCount     int
	Hashtag       string
	ContentType   string
	TrendingRank  int
	ViralScore    float64
	PublishedDate string // calendar date, YYYY-MM-DD

	ExtractionStatus string
	ExtractedAt      *time.Time
	ExtractionError  string

	CreatedAt time.Time
}

// DailySummary represents the per-day rollup maintained by the database
type DailySummary struct {
	Date            string
	EventCount      int
	TopHashtag      string
	TotalEngagement int64
	Sources         []string
	HasViralContent bool
	UpdatedAt       time.Time
}

// SourceConfig represents a source's persisted configuration and fetch state
type SourceConfig struct {
	SourceType         string
	IsEnabled          bool
	Config             map[string]interface{}
	LastFetchAt        *time.Time
	RateLimitRemaining int
}

// ImportJob represents a historical import run
type ImportJob struct {
	ID             string
	Status         string
	SourceType     string
	StartedAt      *time.Time
	CompletedAt    *time.Time
	EventsImported int
	ErrorMessage   string
	CreatedAt      time.Time
}
