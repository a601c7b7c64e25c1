package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
)

// FailurePolicy controls limiter behavior when the underlying store fails.
// The default is fail-open: a false denial silently drops user content,
// while a false allow at worst triggers the platform's own throttling.
type FailurePolicy int8

const (
	// FailOpen treats store failures as "allowed".
	FailOpen FailurePolicy = iota
	// FailClosed treats store failures as "denied".
	FailClosed
)

// Limiter enforces per-(owner, platform) sliding-window posting quotas.
//
// Allow is check-only: it never consumes a slot. RecordAttempt is called
// separately after a publish actually happened, so denied or failed
// publishes don't eat into the quota.
type Limiter struct {
	store  Store
	quotas map[string]Quota
	policy FailurePolicy
	logger *slog.Logger
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithQuotas replaces the default platform quota table.
func WithQuotas(quotas map[string]Quota) LimiterOption {
	return func(l *Limiter) {
		if len(quotas) > 0 {
			l.quotas = quotas
		}
	}
}

// WithFailurePolicy sets behavior on store failure.
func WithFailurePolicy(p FailurePolicy) LimiterOption {
	return func(l *Limiter) { l.policy = p }
}

// WithLogger sets the limiter's logger.
func WithLogger(log *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewLimiter creates a Limiter over the given store.
func NewLimiter(store Store, opts ...LimiterOption) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	l := &Limiter{
		store:  store,
		quotas: DefaultPlatformQuotas(),
		policy: FailOpen,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow reports whether ownerID may publish to platform right now. On
// denial the Result carries ResetAt, the moment the oldest in-window
// attempt expires. Store failures resolve per the FailurePolicy.
func (l *Limiter) Allow(ctx context.Context, ownerID, platform string) (*Result, error) {
	quota, ok := l.quotas[platform]
	if !ok {
		return nil, ErrUnknownPlatform
	}

	now := time.Now()
	count, oldest, err := l.store.InWindow(ctx, rateKey(ownerID, platform), now, quota.Window)
	if err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "rate limit store read failed",
			logger.OwnerID(ownerID),
			logger.Platform(platform),
			logger.Error(err),
		)
		return &Result{
			Allowed:   l.policy == FailOpen,
			Limit:     quota.Limit,
			Remaining: 0,
		}, nil
	}

	if count >= quota.Limit {
		return &Result{
			Allowed:   false,
			Limit:     quota.Limit,
			Remaining: 0,
			ResetAt:   oldest.Add(quota.Window),
		}, nil
	}

	return &Result{
		Allowed:   true,
		Limit:     quota.Limit,
		Remaining: quota.Limit - count,
	}, nil
}

// RecordAttempt registers a completed publish against the owner's window.
// Store failures are logged, never propagated: losing one window entry is
// preferable to failing a publish that already happened.
func (l *Limiter) RecordAttempt(ctx context.Context, ownerID, platform string) {
	quota, ok := l.quotas[platform]
	if !ok {
		return
	}

	if err := l.store.Record(ctx, rateKey(ownerID, platform), time.Now(), quota.Window); err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "rate limit store write failed",
			logger.OwnerID(ownerID),
			logger.Platform(platform),
			logger.Error(err),
		)
	}
}

// Reset clears the window for an owner/platform pair.
func (l *Limiter) Reset(ctx context.Context, ownerID, platform string) error {
	return l.store.Reset(ctx, rateKey(ownerID, platform))
}

// Quota returns the configured quota for a platform.
func (l *Limiter) Quota(platform string) (Quota, bool) {
	q, ok := l.quotas[platform]
	return q, ok
}

func rateKey(ownerID, platform string) string {
	return ownerID + ":" + platform
}
