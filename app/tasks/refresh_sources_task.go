package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viralcal/viralcal/app/aggregator"
	"github.com/viralcal/viralcal/app/database"
	"github.com/viralcal/viralcal/app/storage"
	"github.com/viralcal/viralcal/app/viral"
)

// RefreshSourcesTask fetches today's viral events from every configured
// source and persists the merged bucket.
type RefreshSourcesTask struct {
	Task
	aggregator       *aggregator.Aggregator
	store            *storage.Store
	jobRepo          database.JobRepository
	sourceConfigRepo database.SourceConfigRepository
	minScore         int
}

func NewRefreshSourcesTask(agg *aggregator.Aggregator, store *storage.Store,
	jobRepo database.JobRepository, sourceConfigRepo database.SourceConfigRepository,
	minScore int) *RefreshSourcesTask {
	return &RefreshSourcesTask{
		Task:             NewTask(TaskTypeRefreshSources, "all"),
		aggregator:       agg,
		store:            store,
		jobRepo:          jobRepo,
		sourceConfigRepo: sourceConfigRepo,
		minScore:         minScore,
	}
}

func (t *RefreshSourcesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var jobID string
	if t.jobRepo != nil {
		id, err := t.jobRepo.CreateJob(ctx, "all")
		if err != nil {
			slog.Warn("Failed to record refresh job", "error", err)
		} else {
			jobID = id
			if err := t.jobRepo.StartJob(ctx, jobID); err != nil {
				slog.Warn("Failed to mark refresh job running", "job_id", jobID, "error", err)
			}
		}
	}

	bucket, warnings := t.aggregator.FetchViral(ctx, aggregator.Options{
		MinScore: t.minScore,
	})

	if err := t.store.SaveBuckets(ctx, map[string]*viral.DayBucket{bucket.Date: bucket}); err != nil {
		t.completeJob(ctx, jobID, "failed", 0, err.Error())
		return fmt.Errorf("failed to persist refreshed bucket: %w", err)
	}

	t.recordFetches(ctx)

	status := "completed"
	if len(warnings) > 0 {
		status = "partially_failed"
	}
	t.completeJob(ctx, jobID, status, len(bucket.Events), strings.Join(warnings, "; "))

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"events", len(bucket.Events),
		"warnings", len(warnings))

	return nil
}

// recordFetches updates last_fetch_at and the remaining quota for every
// source that took part in the refresh.
func (t *RefreshSourcesTask) recordFetches(ctx context.Context) {
	if t.sourceConfigRepo == nil {
		return
	}

	fetchedAt := time.Now().UTC()
	for name, status := range t.aggregator.SourceStatuses() {
		if !status.Configured {
			continue
		}
		if err := t.sourceConfigRepo.RecordFetch(ctx, name, fetchedAt, status.RateLimit.Remaining); err != nil {
			slog.Warn("Failed to record source fetch", "source", name, "error", err)
		}
	}
}

func (t *RefreshSourcesTask) completeJob(ctx context.Context, jobID, status string, count int, errorMsg string) {
	if t.jobRepo == nil || jobID == "" {
		return
	}
	if err := t.jobRepo.CompleteJob(ctx, jobID, status, count, errorMsg); err != nil {
		slog.Warn("Failed to finalize refresh job", "job_id", jobID, "error", err)
	}
}
