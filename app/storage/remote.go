package storage

import (
	"context"
	"fmt"

	"github.com/viralcal/viralcal/app/viral"
)

// EventReader is the remote store's read side, implemented by the database
// event repository.
type EventReader interface {
	GetEventsByDate(ctx context.Context, date string) ([]viral.Event, error)
}

// RemoteProvider is the primary read tier backed by the remote relational
// store. Errors propagate to the chain, which logs and falls through.
type RemoteProvider struct {
	reader EventReader
}

func NewRemoteProvider(reader EventReader) *RemoteProvider {
	return &RemoteProvider{reader: reader}
}

func (p *RemoteProvider) Name() string {
	return "remote"
}

func (p *RemoteProvider) Get(ctx context.Context, date string) (*viral.DayBucket, bool, error) {
	events, err := p.reader.GetEventsByDate(ctx, date)
	if err != nil {
		return nil, false, fmt.Errorf("remote read failed: %w", err)
	}
	if len(events) == 0 {
		return nil, false, nil
	}

	bucket := viral.NewDayBucket(date)
	bucket.Events = events
	bucket.Rerank()
	return bucket, true, nil
}
