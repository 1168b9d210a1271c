package database

import (
	"context"
	"time"

	"github.com/viralcal/viralcal/app/viral"
)

type EventRepository interface {
	GetEventsByDate(ctx context.Context, date string) ([]viral.Event, error)
	GetEventCount(ctx context.Context) (int, error)
	GetDateRange(ctx context.Context) (string, string, error)

	UpsertEvents(ctx context.Context, date string, events []viral.Event) error

	GetEventsForExtraction(ctx context.Context, limit int) ([]EventForExtraction, error)
	UpdateExtractedSummary(ctx context.Context, eventID string, summary string, extractedAt time.Time) error
	UpdateExtractionStatus(ctx context.Context, eventID string, status string, errorMsg string) error
}

type EventForExtraction struct {
	ID  string
	URL string
}

type SummaryRepository interface {
	GetSummary(ctx context.Context, date string) (*DailySummary, error)
	GetSummaries(ctx context.Context, from, to string) ([]DailySummary, error)
}

type SourceConfigRepository interface {
	GetSourceConfig(ctx context.Context, sourceType string) (*SourceConfig, error)
	UpsertSourceConfig(ctx context.Context, cfg SourceConfig) error
	RecordFetch(ctx context.Context, sourceType string, fetchedAt time.Time, rateLimitRemaining int) error
}

type JobRepository interface {
	CreateJob(ctx context.Context, sourceType string) (string, error)
	StartJob(ctx context.Context, jobID string) error
	CompleteJob(ctx context.Context, jobID string, status string, eventsImported int, errorMsg string) error
	GetRecentJobs(ctx context.Context, limit int) ([]ImportJob, error)
}
