package sources

import (
	"fmt"
	"net/http"
	"time"
)

// NotConfiguredError reports a fetch attempt against a client whose required
// credentials are absent. Raised before any network call.
type NotConfiguredError struct {
	Source string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("source %s is not configured: missing credentials", e.Source)
}

// UpstreamError is a non-2xx response from a source API.
type UpstreamError struct {
	Source string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("source %s returned HTTP %d", e.Source, e.Status)
}

// Retriable reports whether the failure is worth retrying (server-side
// errors); 4xx responses are considered permanent for a given request.
func (e *UpstreamError) Retriable() bool {
	return e.Status >= 500
}

// RateLimitedError is the 429 case, surfaced separately so callers can show a
// human-readable reset time when the upstream provided one.
type RateLimitedError struct {
	Source  string
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("source %s is rate limited", e.Source)
	}
	return fmt.Sprintf("source %s is rate limited until %s", e.Source, e.ResetAt.Format(time.RFC3339))
}

// StatusError maps a non-2xx status code to the matching typed error.
func StatusError(source string, status int, resetAt time.Time) error {
	if status == http.StatusTooManyRequests {
		return &RateLimitedError{Source: source, ResetAt: resetAt}
	}
	return &UpstreamError{Source: source, Status: status}
}
