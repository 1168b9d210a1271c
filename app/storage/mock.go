package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/viralcal/viralcal/app/viral"
)

// MockProvider is the tertiary tier: a static dataset that keeps the calendar
// populated when both the remote store and the local cache come up empty. The
// default dataset covers the last mockDays days with deterministic
// placeholder events.
type MockProvider struct {
	buckets map[string]*viral.DayBucket
}

const mockDays = 14

func NewMockProvider() *MockProvider {
	buckets := make(map[string]*viral.DayBucket, mockDays)

	now := time.Now()
	for i := 0; i < mockDays; i++ {
		date := viral.Day(now.AddDate(0, 0, -i))
		bucket := viral.NewDayBucket(date)
		bucket.Add(viral.Event{
			ID:          fmt.Sprintf("mock-%s-1", date),
			SourceID:    fmt.Sprintf("mock-%s-1", date),
			SourceType:  "mock",
			Title:       "Sample trending story",
			Summary:     "Placeholder data shown while no live or cached data is available.",
			PostCount:   1200 - i*50,
			Hashtag:     "#Trending",
			ContentType: viral.ContentTrend,
		})
		bucket.Add(viral.Event{
			ID:          fmt.Sprintf("mock-%s-2", date),
			SourceID:    fmt.Sprintf("mock-%s-2", date),
			SourceType:  "mock",
			Title:       "Sample news headline",
			Summary:     "Placeholder data shown while no live or cached data is available.",
			PostCount:   800 - i*30,
			Hashtag:     "#News",
			ContentType: viral.ContentNews,
		})
		buckets[date] = bucket
	}

	return &MockProvider{buckets: buckets}
}

// NewMockProviderWithData builds a provider over a fixed dataset.
func NewMockProviderWithData(buckets map[string]*viral.DayBucket) *MockProvider {
	return &MockProvider{buckets: buckets}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Get(ctx context.Context, date string) (*viral.DayBucket, bool, error) {
	bucket, ok := m.buckets[date]
	return bucket, ok, nil
}
