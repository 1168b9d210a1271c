package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/viralcal/viralcal/app/viral"
)

// LocalCache is the durable local tier: one JSON blob keyed by date, loaded
// and saved wholesale. There are no partial writes; Merge replaces whole
// date entries (shallow per-date overwrite, not a per-event union).
type LocalCache struct {
	path string

	mu      sync.RWMutex
	buckets map[string]*viral.DayBucket
}

func NewLocalCache(path string) (*LocalCache, error) {
	cache := &LocalCache{
		path:    path,
		buckets: make(map[string]*viral.DayBucket),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(data, &cache.buckets); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}

	return cache, nil
}

func (c *LocalCache) Name() string {
	return "local"
}

func (c *LocalCache) Get(ctx context.Context, date string) (*viral.DayBucket, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket, ok := c.buckets[date]
	return bucket, ok, nil
}

// Merge overwrites existing entries for the incoming dates and persists the
// whole blob.
func (c *LocalCache) Merge(buckets map[string]*viral.DayBucket) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for date, bucket := range buckets {
		c.buckets[date] = bucket
	}

	return c.save()
}

// Count returns the number of cached dates.
func (c *LocalCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets)
}

// Dates returns the cached date keys, unordered.
func (c *LocalCache) Dates() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dates := make([]string, 0, len(c.buckets))
	for date := range c.buckets {
		dates = append(dates, date)
	}
	return dates
}

func (c *LocalCache) save() error {
	data, err := json.MarshalIndent(c.buckets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
