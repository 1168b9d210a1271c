package sources

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces successive requests to one upstream. The importer issues at
// most one in-flight request per source and waits out the configured interval
// between them; that spacing is a correctness requirement against upstream
// 429s, not an optimization target.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a fixed minimum gap between calls to Wait. The first
// call returns immediately.
type IntervalPacer struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if !p.last.IsZero() {
		if elapsed := now.Sub(p.last); elapsed < p.interval {
			wait = p.interval - elapsed
		}
	}
	p.last = now.Add(wait)
	p.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NopPacer waits for nothing. Used in tests and for sources that do not need
// pacing.
type NopPacer struct{}

func (NopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
