package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/viralcal/viralcal/app/viral"
)

// SummaryRepositoryImpl reads the per-day rollups the database maintains
// via trigger on event writes.
type SummaryRepositoryImpl struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepositoryImpl {
	return &SummaryRepositoryImpl{db: db}
}

// GetSummary returns a day's rollup, or nil if no events exist for that date
func (r *SummaryRepositoryImpl) GetSummary(ctx context.Context, date string) (*DailySummary, error) {
	var s DailySummary
	var day time.Time

	err := r.db.QueryRowContext(ctx, `
		SELECT date, event_count, COALESCE(top_hashtag, ''), total_engagement,
		       COALESCE(sources, '{}'), has_viral_content, updated_at
		FROM daily_summaries
		WHERE date = $1
	`, date).Scan(&day, &s.EventCount, &s.TopHashtag, &s.TotalEngagement,
		pq.Array(&s.Sources), &s.HasViralContent, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}

	s.Date = day.Format(viral.DateFormat)
	return &s, nil
}

// GetSummaries returns rollups for an inclusive date range, oldest first
func (r *SummaryRepositoryImpl) GetSummaries(ctx context.Context, from, to string) ([]DailySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, event_count, COALESCE(top_hashtag, ''), total_engagement,
		       COALESCE(sources, '{}'), has_viral_content, updated_at
		FROM daily_summaries
		WHERE date BETWEEN $1 AND $2
		ORDER BY date ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summaries: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var s DailySummary
		var day time.Time
		err := rows.Scan(&day, &s.EventCount, &s.TopHashtag, &s.TotalEngagement,
			pq.Array(&s.Sources), &s.HasViralContent, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		s.Date = day.Format(viral.DateFormat)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return summaries, nil
}
