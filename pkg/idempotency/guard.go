package idempotency

import (
	"context"
	"log/slog"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
)

// FailurePolicy controls how the guard behaves when the duplicate lookup
// itself fails. The tradeoff is explicit rather than buried in error
// handling: failing open favors delivery (a guard malfunction must not
// starve publishes), failing closed favors strict at-most-once.
type FailurePolicy int8

const (
	// FailOpen treats lookup failures as "not a duplicate" so dispatch proceeds.
	FailOpen FailurePolicy = iota
	// FailClosed treats lookup failures as "duplicate" so dispatch is skipped.
	FailClosed
)

// Lookup resolves the recorded key for an item/platform pair. The default
// reads the key map carried on the item itself; deployments that move keys
// to an external store swap in their own lookup.
type Lookup func(ctx context.Context, item *content.Item, platform content.Platform) (string, bool, error)

func itemLookup(_ context.Context, item *content.Item, platform content.Platform) (string, bool, error) {
	key, ok := item.IdempotencyKeys[platform]
	return key, ok, nil
}

// Guard detects duplicate publish attempts for (item, platform, scheduled
// time) triples.
type Guard struct {
	policy FailurePolicy
	lookup Lookup
	logger *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithFailurePolicy sets the behavior on lookup failure.
func WithFailurePolicy(p FailurePolicy) GuardOption {
	return func(g *Guard) { g.policy = p }
}

// WithLookup replaces the default in-item key lookup.
func WithLookup(l Lookup) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.lookup = l
		}
	}
}

// WithLogger sets the guard's logger.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a Guard. The default policy is fail-open with keys read
// from the item's own key map.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{
		policy: FailOpen,
		lookup: itemLookup,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsDuplicate reports whether a publish attempt for the item's current
// scheduled time was already recorded for the platform. Lookup failures
// resolve according to the configured FailurePolicy and are logged.
func (g *Guard) IsDuplicate(ctx context.Context, item *content.Item, platform content.Platform) bool {
	recorded, ok, err := g.lookup(ctx, item, platform)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "idempotency lookup failed",
			logger.ItemID(item.ID),
			logger.Platform(string(platform)),
			logger.Error(err),
		)
		return g.policy == FailClosed
	}
	if !ok {
		return false
	}
	return recorded == Key(item.ID, string(platform), item.ScheduledFor)
}

// RecordAttempt stores the attempt fingerprint for the platform under the
// item's current scheduled time. Called after a successful publish or a
// definitive failure that will never be retried under the same key.
func (g *Guard) RecordAttempt(item *content.Item, platform content.Platform) {
	if item.IdempotencyKeys == nil {
		item.IdempotencyKeys = make(map[content.Platform]string, len(item.Platforms))
	}
	item.IdempotencyKeys[platform] = Key(item.ID, string(platform), item.ScheduledFor)
}

// ClearAll wipes recorded keys, allowing re-delivery after a reschedule.
func (g *Guard) ClearAll(item *content.Item) {
	item.IdempotencyKeys = nil
}
