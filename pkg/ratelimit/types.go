package ratelimit

import (
	"context"
	"time"
)

// Quota is a platform's posting allowance over a sliding window.
type Quota struct {
	Limit  int
	Window time.Duration
}

// DefaultPlatformQuotas mirrors the external platforms' published API limits,
// kept deliberately below the real ceilings to leave headroom for activity
// outside this system.
func DefaultPlatformQuotas() map[string]Quota {
	return map[string]Quota{
		"twitter":   {Limit: 300, Window: 3 * time.Hour},
		"discord":   {Limit: 50, Window: time.Hour},
		"instagram": {Limit: 25, Window: time.Hour},
		"youtube":   {Limit: 6, Window: 24 * time.Hour},
		"twitch":    {Limit: 100, Window: time.Hour},
	}
}

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether a publish may proceed.
	Allowed bool

	// Limit is the maximum number of posts allowed in the window.
	Limit int

	// Remaining is the number of posts remaining in the current window.
	Remaining int

	// ResetAt is when the oldest in-window attempt expires, i.e. the
	// earliest time a denied publish could succeed. Zero when allowed.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next publish could be
// admitted. Returns 0 if the check was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store persists attempt timestamps per rate key. Entries older than the
// window are pruned lazily, on read.
type Store interface {
	// Record appends an attempt timestamp for the key.
	Record(ctx context.Context, key string, at time.Time, window time.Duration) error

	// InWindow returns the number of attempts within [now-window, now] and
	// the oldest surviving timestamp. oldest is the zero time when the
	// window is empty.
	InWindow(ctx context.Context, key string, now time.Time, window time.Duration) (count int, oldest time.Time, err error)

	// Reset removes all attempts recorded for the key.
	Reset(ctx context.Context, key string) error
}
