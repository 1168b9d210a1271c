package storage

import (
	"context"
	"log/slog"

	"github.com/viralcal/viralcal/app/viral"
)

// RemoteWriter mirrors imported buckets into the remote store. Implemented by
// the database event repository; nil when no remote store is configured.
type RemoteWriter interface {
	UpsertEvents(ctx context.Context, date string, events []viral.Event) error
}

// Store is the write path. Writes land in the local cache first (synchronously
// durable), then mirror to the remote store best-effort: a remote failure is
// logged, not retried, and never rolls back the local write.
type Store struct {
	local  *LocalCache
	remote RemoteWriter
}

func NewStore(local *LocalCache, remote RemoteWriter) *Store {
	return &Store{local: local, remote: remote}
}

func (s *Store) SaveBuckets(ctx context.Context, buckets map[string]*viral.DayBucket) error {
	if len(buckets) == 0 {
		return nil
	}

	if err := s.local.Merge(buckets); err != nil {
		return err
	}

	if s.remote == nil {
		return nil
	}

	for date, bucket := range buckets {
		if err := s.remote.UpsertEvents(ctx, date, bucket.Events); err != nil {
			slog.Warn("Remote mirror failed, local write kept", "date", date, "error", err)
		}
	}

	return nil
}

// Local exposes the cache for read-chain construction and stats.
func (s *Store) Local() *LocalCache {
	return s.local
}
