package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/viralcal/viralcal/app/viral"
)

// Source type identifiers used as Event.SourceType and as database keys.
const (
	TypeReddit     = "reddit"
	TypeHackerNews = "hackernews"
	TypeNewsAPI    = "newsapi"
	TypeTwitter    = "twitter"
	TypeGoogleNews = "googlenews"
)

// HTTPClient is the subset of *http.Client the source clients need, extracted
// so tests can inject canned responses.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchParams narrows a fetch. Zero values mean "use the client's default
// popular fetch". Subreddit and Timeframe only apply to clients that
// understand them; others ignore both.
type FetchParams struct {
	Query     string
	Subreddit string
	Timeframe string
	Limit     int
	MinScore  int
}

// RateLimitStatus is the last-known upstream quota, updated from response
// headers when the upstream sends them and defaulted otherwise.
type RateLimitStatus struct {
	Remaining int
	ResetAt   time.Time
}

// Client is one external content provider. Fetch never errors on empty
// results; it returns an empty slice. Calling Fetch on an unconfigured client
// fails fast with NotConfiguredError without touching the network.
type Client interface {
	Name() string
	Configured() bool
	Fetch(ctx context.Context, params FetchParams) ([]viral.Event, error)
	RateLimitStatus() RateLimitStatus
}
