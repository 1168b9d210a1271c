package database

import (
	"context"
	"fmt"
	"time"
)

// JobRepositoryImpl handles database operations for import jobs
type JobRepositoryImpl struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepositoryImpl {
	return &JobRepositoryImpl{db: db}
}

// CreateJob records a new pending import job and returns its ID
func (r *JobRepositoryImpl) CreateJob(ctx context.Context, sourceType string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO import_jobs (status, source_type)
		VALUES ('pending', $1)
		RETURNING id
	`, sourceType).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create import job: %w", err)
	}
	return id, nil
}

// StartJob marks a job as running
func (r *JobRepositoryImpl) StartJob(ctx context.Context, jobID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE import_jobs
		SET status = 'running', started_at = NOW()
		WHERE id = $1
	`, jobID)
	if err != nil {
		return fmt.Errorf("failed to start import job: %w", err)
	}
	return nil
}

// CompleteJob records a job's terminal status and result counts
func (r *JobRepositoryImpl) CompleteJob(ctx context.Context, jobID string, status string, eventsImported int, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE import_jobs
		SET status = $2, events_imported = $3, error_message = $4, completed_at = NOW()
		WHERE id = $1
	`, jobID, status, eventsImported, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to complete import job: %w", err)
	}
	return nil
}

// GetRecentJobs returns the most recent import jobs, newest first
func (r *JobRepositoryImpl) GetRecentJobs(ctx context.Context, limit int) ([]ImportJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, source_type, started_at, completed_at,
		       events_imported, COALESCE(error_message, ''), created_at
		FROM import_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []ImportJob
	for rows.Next() {
		var job ImportJob
		var startedAt, completedAt *time.Time
		err := rows.Scan(
			&job.ID, &job.Status, &job.SourceType, &startedAt, &completedAt,
			&job.EventsImported, &job.ErrorMessage, &job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		job.StartedAt = startedAt
		job.CompletedAt = completedAt
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}
