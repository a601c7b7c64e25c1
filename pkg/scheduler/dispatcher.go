package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/idempotency"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/publisher"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/queue"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/ratelimit"
)

// DefaultMaxRetries bounds transient-failure attempts per item.
const DefaultMaxRetries int8 = 3

// Dispatcher executes publish attempts for one item across its target
// platforms. It owns the per-platform decision chain: platform toggle,
// duplicate guard, integration lookup, rate limit, then the publish itself,
// with retry bookkeeping on transient failures.
type Dispatcher struct {
	store        content.Store
	registry     *publisher.Registry
	guard        *idempotency.Guard
	limiter      *ratelimit.Limiter
	backend      queue.Backend
	integrations publisher.IntegrationProvider
	platformCfg  publisher.Config
	maxRetries   int8
	logger       *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIntegrations wires an integration provider. Without one, owner
// credentials are assumed to be handled inside each publisher.
func WithIntegrations(p publisher.IntegrationProvider) DispatcherOption {
	return func(d *Dispatcher) { d.integrations = p }
}

// WithPlatformConfig wires the platform enable/disable table.
func WithPlatformConfig(cfg publisher.Config) DispatcherOption {
	return func(d *Dispatcher) {
		if cfg != nil {
			d.platformCfg = cfg
		}
	}
}

// WithMaxRetries overrides the transient-failure retry budget.
func WithMaxRetries(n int8) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxRetries = n
		}
	}
}

// WithDispatcherLogger sets the dispatcher's logger.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDispatcher creates a Dispatcher. Store, registry, guard, limiter, and
// queue backend are all required.
func NewDispatcher(
	store content.Store,
	registry *publisher.Registry,
	guard *idempotency.Guard,
	limiter *ratelimit.Limiter,
	backend queue.Backend,
	opts ...DispatcherOption,
) (*Dispatcher, error) {
	switch {
	case store == nil:
		return nil, ErrStoreNil
	case registry == nil:
		return nil, ErrRegistryNil
	case guard == nil:
		return nil, ErrGuardNil
	case limiter == nil:
		return nil, ErrLimiterNil
	case backend == nil:
		return nil, ErrBackendNil
	}

	d := &Dispatcher{
		store:       store,
		registry:    registry,
		guard:       guard,
		limiter:     limiter,
		backend:     backend,
		platformCfg: publisher.StaticConfig{},
		maxRetries:  DefaultMaxRetries,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch attempts to publish item to a single platform and returns the
// attempt's outcome. The item is mutated in place (retry bookkeeping,
// idempotency keys, publish error) but only the PUBLISHING transition is
// persisted here; the caller persists the aggregate status.
func (d *Dispatcher) Dispatch(ctx context.Context, item *content.Item, platform content.Platform) Outcome {
	// Disabled platforms fail permanently without consuming a retry or a
	// rate-limit slot.
	if !d.platformCfg.IsEnabled(platform) {
		return d.failFatal(ctx, item, platform, publisher.ErrPlatformDisabled)
	}

	if d.guard.IsDuplicate(ctx, item, platform) {
		d.logger.LogAttrs(ctx, slog.LevelInfo, "duplicate attempt skipped",
			logger.ItemID(item.ID),
			logger.Platform(string(platform)),
		)
		return OutcomeSkipped
	}

	if d.integrations != nil {
		integration, err := d.integrations.ActiveIntegration(ctx, item.OwnerID, platform)
		if err != nil {
			return d.failTransient(ctx, item, platform, err)
		}
		if integration == nil {
			return d.failFatal(ctx, item, platform, publisher.ErrNoIntegration)
		}
	}

	pub, err := d.registry.Lookup(platform)
	if err != nil {
		return d.failFatal(ctx, item, platform, err)
	}

	res, err := d.limiter.Allow(ctx, item.OwnerID.String(), string(platform))
	if err != nil {
		return d.failTransient(ctx, item, platform, err)
	}
	if !res.Allowed {
		return d.enqueue(ctx, item, platform, res.RetryAfter())
	}

	// The publishing transition goes to storage before the external call so
	// a crash mid-publish leaves evidence of the in-flight attempt instead
	// of a stale scheduled row.
	if item.Status != content.StatusPublishing {
		item.Status = content.StatusPublishing
		if err := d.store.Update(ctx, item); err != nil {
			return d.failTransient(ctx, item, platform, err)
		}
	}

	receipt, err := pub.Publish(ctx, item, platform)
	if err != nil {
		if publisher.IsFatal(err) {
			return d.failFatal(ctx, item, platform, err)
		}
		return d.failTransient(ctx, item, platform, err)
	}

	d.limiter.RecordAttempt(ctx, item.OwnerID.String(), string(platform))
	d.guard.RecordAttempt(item, platform)
	item.PublishError = ""

	d.logger.LogAttrs(ctx, slog.LevelInfo, "published",
		logger.ItemID(item.ID),
		logger.OwnerID(item.OwnerID),
		logger.Platform(string(platform)),
		slog.String("external_id", receipt.ExternalID),
	)
	return OutcomePublished
}

// failFatal handles permanent failures: the attempt fingerprint is recorded
// so the same scheduled time is never retried, and no retry is consumed.
func (d *Dispatcher) failFatal(ctx context.Context, item *content.Item, platform content.Platform, cause error) Outcome {
	d.guard.RecordAttempt(item, platform)
	item.PublishError = cause.Error()

	d.logger.LogAttrs(ctx, slog.LevelWarn, "publish failed permanently",
		logger.ItemID(item.ID),
		logger.Platform(string(platform)),
		logger.Error(cause),
	)
	return OutcomeFailed
}

// failTransient consumes a retry and decides between another attempt and
// giving up.
func (d *Dispatcher) failTransient(ctx context.Context, item *content.Item, platform content.Platform, cause error) Outcome {
	item.RetryCount++
	now := time.Now().UTC()
	item.LastRetryAt = &now
	item.PublishError = cause.Error()

	if item.RetryCount >= d.maxRetries {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "retry budget exhausted",
			logger.ItemID(item.ID),
			logger.Platform(string(platform)),
			slog.Int("retry_count", int(item.RetryCount)),
			logger.Error(cause),
		)
		return OutcomeFailed
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "transient publish failure",
		logger.ItemID(item.ID),
		logger.Platform(string(platform)),
		slog.Int("retry_count", int(item.RetryCount)),
		logger.Error(cause),
	)
	return OutcomeRetrying
}

// enqueue defers the platform attempt to the queue backend.
func (d *Dispatcher) enqueue(ctx context.Context, item *content.Item, platform content.Platform, retryAfter time.Duration) Outcome {
	job := queue.NewJob(item.ID, string(platform),
		queue.WithReason("rate_limited"),
		queue.WithDelay(retryAfter),
	)
	if err := d.backend.Enqueue(ctx, job); err != nil {
		// A queue outage degrades to the retry path rather than losing the
		// attempt entirely.
		return d.failTransient(ctx, item, platform, err)
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "rate limited, queued",
		logger.ItemID(item.ID),
		logger.OwnerID(item.OwnerID),
		logger.Platform(string(platform)),
		slog.Duration("retry_after", retryAfter),
	)
	return OutcomeQueued
}

// DispatchItem runs the item through all of its target platforms in order,
// aggregates the outcomes, and persists the resulting status.
func (d *Dispatcher) DispatchItem(ctx context.Context, item *content.Item) (content.Status, error) {
	outcomes := make([]Outcome, 0, len(item.Platforms))
	for _, platform := range item.Platforms {
		outcomes = append(outcomes, d.Dispatch(ctx, item, platform))
	}

	target := Aggregate(outcomes)
	if target == content.StatusPublished {
		now := time.Now().UTC()
		item.PublishedAt = &now
	}

	if err := d.persistStatus(ctx, item, target); err != nil {
		return target, err
	}
	return target, nil
}

// persistStatus moves the item to target, bridging through PUBLISHING when
// the direct transition is not legal (an item whose every platform
// short-circuited never entered the publishing state).
func (d *Dispatcher) persistStatus(ctx context.Context, item *content.Item, target content.Status) error {
	if !item.Status.CanTransition(target) &&
		item.Status.CanTransition(content.StatusPublishing) &&
		content.StatusPublishing.CanTransition(target) {
		item.Status = content.StatusPublishing
		if err := d.store.Update(ctx, item); err != nil {
			return err
		}
	}

	item.Status = target
	return d.store.Update(ctx, item)
}
