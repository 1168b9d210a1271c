package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SourceConfigRepositoryImpl handles database operations for source configs
type SourceConfigRepositoryImpl struct {
	db *DB
}

// NewSourceConfigRepository creates a new source config repository
func NewSourceConfigRepository(db *DB) *SourceConfigRepositoryImpl {
	return &SourceConfigRepositoryImpl{db: db}
}

// GetSourceConfig returns the persisted config for a source, or nil if absent
func (r *SourceConfigRepositoryImpl) GetSourceConfig(ctx context.Context, sourceType string) (*SourceConfig, error) {
	var cfg SourceConfig
	var rawConfig []byte
	var lastFetch sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT source_type, is_enabled, config, last_fetch_at, rate_limit_remaining
		FROM source_configs
		WHERE source_type = $1
	`, sourceType).Scan(&cfg.SourceType, &cfg.IsEnabled, &rawConfig, &lastFetch, &cfg.RateLimitRemaining)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source config: %w", err)
	}

	if lastFetch.Valid {
		cfg.LastFetchAt = &lastFetch.Time
	}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg.Config); err != nil {
			return nil, fmt.Errorf("failed to decode source config: %w", err)
		}
	}

	return &cfg, nil
}

// UpsertSourceConfig stores a source's configuration
func (r *SourceConfigRepositoryImpl) UpsertSourceConfig(ctx context.Context, cfg SourceConfig) error {
	rawConfig, err := json.Marshal(cfg.Config)
	if err != nil {
		return fmt.Errorf("failed to encode source config: %w", err)
	}
	if cfg.Config == nil {
		rawConfig = []byte("{}")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO source_configs (source_type, is_enabled, config, rate_limit_remaining)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_type) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			config = EXCLUDED.config,
			rate_limit_remaining = EXCLUDED.rate_limit_remaining
	`, cfg.SourceType, cfg.IsEnabled, rawConfig, cfg.RateLimitRemaining)
	if err != nil {
		return fmt.Errorf("failed to upsert source config: %w", err)
	}
	return nil
}

// RecordFetch updates a source's fetch timestamp and remaining quota
func (r *SourceConfigRepositoryImpl) RecordFetch(ctx context.Context, sourceType string, fetchedAt time.Time, rateLimitRemaining int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO source_configs (source_type, last_fetch_at, rate_limit_remaining)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_type) DO UPDATE SET
			last_fetch_at = EXCLUDED.last_fetch_at,
			rate_limit_remaining = EXCLUDED.rate_limit_remaining
	`, sourceType, fetchedAt, rateLimitRemaining)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}
