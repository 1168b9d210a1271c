// Package aggregator merges same-day results across sources into one ranked
// day bucket.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

// Options narrows an aggregation run.
type Options struct {
	// Sources restricts the run to the named source types. Empty means all
	// registered clients.
	Sources []string
	// MinScore drops events below the engagement threshold.
	MinScore int
	// NewsOnly applies the news policy filter after the score cut.
	NewsOnly bool
	// MaxResults caps the final bucket. Zero means DefaultMaxResults.
	MaxResults int
	// PerSourceLimit is passed through to each client. Zero means the
	// client's own default.
	PerSourceLimit int
}

const DefaultMaxResults = 50

// Aggregator fans out to its source clients and folds the results into a
// single bucket dated "today". Every event is filed under the fetch date: the
// upstream endpoints do not expose per-event publish dates uniformly, so the
// fetch date is the documented attribution.
type Aggregator struct {
	clients    []sources.Client
	newsFilter *viral.NewsFilter
}

func New(clients []sources.Client) *Aggregator {
	return &Aggregator{
		clients:    clients,
		newsFilter: viral.NewNewsFilter(),
	}
}

// FetchViral runs the aggregation. Source-level failures never abort the run;
// they are recorded as warnings and the remaining sources still contribute.
// The returned warnings list is empty on a fully clean run.
func (a *Aggregator) FetchViral(ctx context.Context, opts Options) (*viral.DayBucket, []string) {
	selected := a.selectClients(opts.Sources)

	// One result slot per client keeps concatenation order equal to client
	// registration order, which makes the dedup tie-break deterministic.
	results := make([][]viral.Event, len(selected))
	warnings := make([]string, 0)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, client := range selected {
		if !client.Configured() {
			// Fetch goroutines from earlier iterations are already running,
			// so this append needs the same lock they use.
			mu.Lock()
			warnings = append(warnings, fmt.Sprintf("source %s skipped: not configured", client.Name()))
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(slot int, client sources.Client) {
			defer wg.Done()

			events, err := client.Fetch(ctx, sources.FetchParams{Limit: opts.PerSourceLimit})
			if err != nil {
				slog.Warn("Source fetch failed", "source", client.Name(), "error", err)
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("source %s failed: %v", client.Name(), err))
				mu.Unlock()
				return
			}

			results[slot] = events
		}(i, client)
	}

	wg.Wait()

	var merged []viral.Event
	for _, events := range results {
		merged = append(merged, events...)
	}

	filtered := merged[:0:0]
	for _, e := range merged {
		if e.PostCount < opts.MinScore {
			continue
		}
		if opts.NewsOnly && !a.newsFilter.Match(e) {
			continue
		}
		filtered = append(filtered, e)
	}

	deduped := viral.DedupByTitle(filtered)

	bucket := viral.NewDayBucket(viral.Today())
	bucket.Events = deduped
	bucket.Rerank()

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	bucket.Truncate(maxResults)

	slog.Info("Aggregation completed",
		"sources", len(selected),
		"fetched", len(merged),
		"kept", len(bucket.Events),
		"warnings", len(warnings))

	return bucket, warnings
}

// SourceStatuses reports configuration and rate-limit state per client.
func (a *Aggregator) SourceStatuses() map[string]SourceStatus {
	statuses := make(map[string]SourceStatus, len(a.clients))
	for _, client := range a.clients {
		statuses[client.Name()] = SourceStatus{
			Configured: client.Configured(),
			RateLimit:  client.RateLimitStatus(),
		}
	}
	return statuses
}

type SourceStatus struct {
	Configured bool
	RateLimit  sources.RateLimitStatus
}

func (a *Aggregator) selectClients(names []string) []sources.Client {
	if len(names) == 0 {
		return a.clients
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	selected := make([]sources.Client, 0, len(a.clients))
	for _, client := range a.clients {
		if wanted[client.Name()] {
			selected = append(selected, client)
		}
	}
	return selected
}
