// Package importer backfills day buckets by iterating subreddit × timeframe
// combinations against one source, paced to stay inside upstream rate limits.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/viral"
)

type State string

const (
	StateIdle            State = "idle"
	StateRunning         State = "running"
	StateCompleted       State = "completed"
	StatePartiallyFailed State = "partially_failed"
	StateCancelled       State = "cancelled"
)

// Progress is the ephemeral, caller-facing snapshot emitted before each unit
// of work and once with a terminal state. It is never persisted.
type Progress struct {
	Total      int
	Current    int
	Label      string
	ItemsFound int
	State      State
}

type Options struct {
	Subreddits []string
	Timeframes []string
	MinScore   int
	// MaxPosts is an approximate cap: it is checked between units of work,
	// never mid-fetch, so a single fetch can overshoot it.
	MaxPosts int
	// IncludeAllTime adds one broader all-time sweep after the main loop,
	// with a stricter 2×MinScore threshold.
	IncludeAllTime bool
	OnProgress     func(Progress)
}

// Importer drives sequential imports against a single source client. Requests
// are strictly serialized and spaced by the pacer: at most one in-flight
// request, which is the rate-limit safety contract, not an implementation
// accident.
type Importer struct {
	client sources.Client
	pacer  sources.Pacer

	mu    sync.Mutex
	state State
}

func New(client sources.Client, pacer sources.Pacer) *Importer {
	return &Importer{
		client: client,
		pacer:  pacer,
		state:  StateIdle,
	}
}

func (imp *Importer) State() State {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.state
}

func (imp *Importer) setState(s State) {
	imp.mu.Lock()
	imp.state = s
	imp.mu.Unlock()
}

// Run executes the import and returns the accumulated date-keyed buckets.
// Per-unit failures are logged and skipped (no retry); the run then ends in
// PartiallyFailed. Only context cancellation surfaces as an error, alongside
// whatever was accumulated up to that point.
func (imp *Importer) Run(ctx context.Context, opts Options) (map[string]*viral.DayBucket, error) {
	subreddits := opts.Subreddits
	if len(subreddits) == 0 {
		subreddits = []string{"popular"}
	}
	timeframes := opts.Timeframes
	if len(timeframes) == 0 {
		timeframes = []string{"day"}
	}

	imp.setState(StateRunning)

	total := len(subreddits) * len(timeframes)
	current := 0
	itemsFound := 0
	unitFailures := 0
	buckets := make(map[string]*viral.DayBucket)

	report := func(label string, state State) {
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Total:      total,
				Current:    current,
				Label:      label,
				ItemsFound: itemsFound,
				State:      state,
			})
		}
	}

	for _, timeframe := range timeframes {
		// Approximate cap: checked once per timeframe, overshoot within a
		// timeframe's subreddit loop is allowed.
		if opts.MaxPosts > 0 && itemsFound >= opts.MaxPosts {
			slog.Info("Import post cap reached", "items", itemsFound, "max_posts", opts.MaxPosts)
			break
		}

		for _, subreddit := range subreddits {
			if opts.MaxPosts > 0 && itemsFound >= opts.MaxPosts {
				break
			}

			label := fmt.Sprintf("r/%s (%s)", subreddit, timeframe)
			report(label, StateRunning)
			current++

			if err := imp.pacer.Wait(ctx); err != nil {
				imp.setState(StateCancelled)
				report(label, StateCancelled)
				return buckets, err
			}

			added, err := imp.fetchUnit(ctx, buckets, sources.FetchParams{
				Subreddit: subreddit,
				Timeframe: timeframe,
				MinScore:  opts.MinScore,
			})
			if err != nil {
				if ctx.Err() != nil {
					imp.setState(StateCancelled)
					report(label, StateCancelled)
					return buckets, ctx.Err()
				}
				slog.Warn("Import unit failed, continuing", "source", imp.client.Name(), "unit", label, "error", err)
				unitFailures++
				continue
			}
			itemsFound += added
		}
	}

	if opts.IncludeAllTime && ctx.Err() == nil {
		if err := imp.pacer.Wait(ctx); err != nil {
			imp.setState(StateCancelled)
			report("all-time sweep", StateCancelled)
			return buckets, err
		}

		added, err := imp.fetchUnit(ctx, buckets, sources.FetchParams{
			Subreddit: "all",
			Timeframe: "all",
			MinScore:  2 * opts.MinScore,
		})
		if err != nil {
			slog.Warn("All-time sweep failed", "source", imp.client.Name(), "error", err)
			unitFailures++
		} else {
			itemsFound += added
		}
	}

	finalState := StateCompleted
	if unitFailures > 0 {
		finalState = StatePartiallyFailed
	}
	imp.setState(finalState)
	report("done", finalState)

	slog.Info("Import finished",
		"source", imp.client.Name(),
		"state", string(finalState),
		"items", itemsFound,
		"dates", len(buckets),
		"failed_units", unitFailures)

	return buckets, nil
}

// fetchUnit runs one fetch and merges the result into the accumulator under
// the fetch-time date. Duplicate event IDs within a date bucket are skipped;
// ranks and the top hashtag are recomputed on every accepted event.
func (imp *Importer) fetchUnit(ctx context.Context, buckets map[string]*viral.DayBucket, params sources.FetchParams) (int, error) {
	events, err := imp.client.Fetch(ctx, params)
	if err != nil {
		return 0, err
	}

	date := viral.Today()
	bucket, ok := buckets[date]
	if !ok {
		bucket = viral.NewDayBucket(date)
		buckets[date] = bucket
	}

	added := 0
	for _, e := range events {
		if bucket.Add(e) {
			added++
		}
	}
	return added, nil
}

// FilterNewsOnly applies the news policy filter to an imported result set,
// dropping any bucket left empty.
func FilterNewsOnly(buckets map[string]*viral.DayBucket) map[string]*viral.DayBucket {
	return viral.NewNewsFilter().Apply(buckets)
}
