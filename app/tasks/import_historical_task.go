package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viralcal/viralcal/app/database"
	"github.com/viralcal/viralcal/app/importer"
	"github.com/viralcal/viralcal/app/storage"
)

// ImportHistoricalTask runs a paced backfill against one source and persists
// whatever the run accumulated, including partial results on cancellation.
type ImportHistoricalTask struct {
	Task
	importer *importer.Importer
	store    *storage.Store
	jobRepo  database.JobRepository
	opts     importer.Options
	newsOnly bool
}

func NewImportHistoricalTask(source string, imp *importer.Importer, store *storage.Store, jobRepo database.JobRepository, opts importer.Options, newsOnly bool) *ImportHistoricalTask {
	return &ImportHistoricalTask{
		Task:     NewTask(TaskTypeImportHistorical, source),
		importer: imp,
		store:    store,
		jobRepo:  jobRepo,
		opts:     opts,
		newsOnly: newsOnly,
	}
}

func (t *ImportHistoricalTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var jobID string
	if t.jobRepo != nil {
		id, err := t.jobRepo.CreateJob(ctx, t.Source)
		if err != nil {
			slog.Warn("Failed to record import job", "source", t.Source, "error", err)
		} else {
			jobID = id
			if err := t.jobRepo.StartJob(ctx, jobID); err != nil {
				slog.Warn("Failed to mark import job running", "job_id", jobID, "error", err)
			}
		}
	}

	buckets, runErr := t.importer.Run(ctx, t.opts)

	if t.newsOnly {
		buckets = importer.FilterNewsOnly(buckets)
	}

	imported := 0
	for _, bucket := range buckets {
		imported += len(bucket.Events)
	}

	// Partial results survive cancellation: persist before reporting the error.
	if len(buckets) > 0 {
		if err := t.store.SaveBuckets(context.WithoutCancel(ctx), buckets); err != nil {
			t.completeJob(ctx, jobID, "failed", imported, err.Error())
			return fmt.Errorf("failed to persist imported buckets: %w", err)
		}
	}

	if runErr != nil {
		t.completeJob(ctx, jobID, "cancelled", imported, runErr.Error())
		return runErr
	}

	t.completeJob(ctx, jobID, string(t.importer.State()), imported, "")

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.Source,
		"duration", t.GetDuration(),
		"events", imported,
		"dates", len(buckets))

	return nil
}

func (t *ImportHistoricalTask) completeJob(ctx context.Context, jobID, status string, count int, errorMsg string) {
	if t.jobRepo == nil || jobID == "" {
		return
	}
	if err := t.jobRepo.CompleteJob(context.WithoutCancel(ctx), jobID, status, count, errorMsg); err != nil {
		slog.Warn("Failed to finalize import job", "job_id", jobID, "error", err)
	}
}
