// Package storage implements the tiered read path (remote store, then local
// cache, then static mock data) and the local-first write path.
package storage

import (
	"context"
	"log/slog"

	"github.com/viralcal/viralcal/app/viral"
)

// Provider is one read tier. Get reports absence via the bool, never via an
// error; errors mean the tier itself failed.
type Provider interface {
	Name() string
	Get(ctx context.Context, date string) (*viral.DayBucket, bool, error)
}

// Chain resolves a date against its providers in order. A failing tier is
// logged and skipped, never surfaced: a transient remote outage degrades to
// stale local data instead of failing the read.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Get returns the first tier's bucket for the date, or (nil, false) when no
// tier has it.
func (c *Chain) Get(ctx context.Context, date string) (*viral.DayBucket, bool) {
	for _, p := range c.providers {
		bucket, ok, err := p.Get(ctx, date)
		if err != nil {
			slog.Warn("Read tier failed, falling through", "tier", p.Name(), "date", date, "error", err)
			continue
		}
		if ok {
			return bucket, true
		}
	}
	return nil, false
}
