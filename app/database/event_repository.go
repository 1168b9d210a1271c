package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/viralcal/viralcal/app/viral"
)

// EventRepositoryImpl handles database operations for viral events
type EventRepositoryImpl struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

// UpsertEvents stores a day's events, updating engagement and rank for
// events already seen on a previous refresh.
func (r *EventRepositoryImpl) UpsertEvents(ctx context.Context, date string, events []viral.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (
				event_key, source_id, source_type, title, summary, url,
				post_count, hashtag, content_type, trending_rank, viral_score,
				published_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (source_id, source_type) DO UPDATE SET
				title = EXCLUDED.title,
				post_count = EXCLUDED.post_count,
				hashtag = EXCLUDED.hashtag,
				content_type = EXCLUDED.content_type,
				trending_rank = EXCLUDED.trending_rank,
				viral_score = EXCLUDED.viral_score
		`, e.ID, e.SourceID, e.SourceType, e.Title, e.Summary, e.URL,
			e.PostCount, e.Hashtag, string(e.ContentType), e.TrendingRank,
			e.ViralScore, date)
		if err != nil {
			return fmt.Errorf("failed to upsert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}

	return nil
}

// GetEventsByDate returns a day's events ordered by rank
func (r *EventRepositoryImpl) GetEventsByDate(ctx context.Context, date string) ([]viral.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_key, source_id, source_type, COALESCE(title, ''),
		       COALESCE(summary, ''), COALESCE(url, ''), post_count,
		       COALESCE(hashtag, ''), COALESCE(content_type, 'trend'),
		       trending_rank, viral_score, published_date
		FROM events
		WHERE published_date = $1
		ORDER BY trending_rank ASC, post_count DESC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for %s: %w", date, err)
	}
	defer rows.Close()

	var events []viral.Event
	for rows.Next() {
		var e viral.Event
		var contentType string
		var published time.Time
		err := rows.Scan(
			&e.ID, &e.SourceID, &e.SourceType, &e.Title, &e.Summary, &e.URL,
			&e.PostCount, &e.Hashtag, &contentType, &e.TrendingRank,
			&e.ViralScore, &published,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.ContentType = viral.ContentType(contentType)
		e.PublishedAt = &published
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// GetEventCount returns the total number of stored events
func (r *EventRepositoryImpl) GetEventCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

// GetDateRange returns the earliest and latest dates with stored events
func (r *EventRepositoryImpl) GetDateRange(ctx context.Context) (string, string, error) {
	var earliest, latest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT MIN(published_date), MAX(published_date) FROM events").Scan(&earliest, &latest)
	if err != nil {
		return "", "", fmt.Errorf("failed to get date range: %w", err)
	}
	if !earliest.Valid {
		return "", "", nil
	}
	return earliest.Time.Format(viral.DateFormat), latest.Time.Format(viral.DateFormat), nil
}

// GetEventsForExtraction returns events whose summary has not been extracted yet
func (r *EventRepositoryImpl) GetEventsForExtraction(ctx context.Context, limit int) ([]EventForExtraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url FROM events
		WHERE summary_extraction_status = 'pending'
		  AND url <> ''
		ORDER BY post_count DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for extraction: %w", err)
	}
	defer rows.Close()

	var events []EventForExtraction
	for rows.Next() {
		var e EventForExtraction
		if err := rows.Scan(&e.ID, &e.URL); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return events, nil
}

// UpdateExtractedSummary stores an extracted summary and marks the event done
func (r *EventRepositoryImpl) UpdateExtractedSummary(ctx context.Context, eventID string, summary string, extractedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET summary = $2,
		    summary_extraction_status = 'success',
		    summary_extracted_at = $3,
		    summary_extraction_error = ''
		WHERE id = $1
	`, eventID, summary, extractedAt)
	if err != nil {
		return fmt.Errorf("failed to update extracted summary: %w", err)
	}
	return nil
}

// UpdateExtractionStatus updates the extraction status of an event
func (r *EventRepositoryImpl) UpdateExtractionStatus(ctx context.Context, eventID string, status string, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET summary_extraction_status = $2,
		    summary_extraction_error = $3
		WHERE id = $1
	`, eventID, status, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}
