package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/idempotency"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/publisher"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/queue"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/ratelimit"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/scheduler"
)

// okPublisher always succeeds.
func okPublisher() publisher.Publisher {
	return publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
		return &publisher.Receipt{ExternalID: "ext-" + string(platform)}, nil
	})
}

// newEnv builds a dispatcher over in-memory collaborators. The limiter uses
// generous quotas unless overridden via limiterOpts.
func newEnv(t *testing.T, pubs map[content.Platform]publisher.Publisher, limiterOpts []ratelimit.LimiterOption, opts ...scheduler.DispatcherOption) (*scheduler.Dispatcher, *content.MemoryStore, *queue.MemoryBackend) {
	t.Helper()

	store := content.NewMemoryStore()
	backend := queue.NewMemoryBackend()

	reg, err := publisher.NewRegistry(pubs)
	require.NoError(t, err)

	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), limiterOpts...)
	require.NoError(t, err)

	d, err := scheduler.NewDispatcher(store, reg, idempotency.NewGuard(), limiter, backend, opts...)
	require.NoError(t, err)
	return d, store, backend
}

// scheduledItem creates a due item in the store and returns a working copy.
func scheduledItem(t *testing.T, store *content.MemoryStore, platforms ...content.Platform) *content.Item {
	t.Helper()

	if len(platforms) == 0 {
		platforms = []content.Platform{content.PlatformDiscord}
	}
	item := &content.Item{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Title:        "launch announcement",
		Body:         "we are live",
		Platforms:    platforms,
		ScheduledFor: time.Now().UTC().Add(-time.Minute),
		Status:       content.StatusScheduled,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Create(context.Background(), item))
	return item.Clone()
}

func TestNewDispatcher(t *testing.T) {
	t.Parallel()

	store := content.NewMemoryStore()
	reg, err := publisher.NewRegistry(map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: okPublisher(),
	})
	require.NoError(t, err)
	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore())
	require.NoError(t, err)
	backend := queue.NewMemoryBackend()
	guard := idempotency.NewGuard()

	tests := []struct {
		name string
		err  error
		fn   func() (*scheduler.Dispatcher, error)
	}{
		{"nil store", scheduler.ErrStoreNil, func() (*scheduler.Dispatcher, error) {
			return scheduler.NewDispatcher(nil, reg, guard, limiter, backend)
		}},
		{"nil registry", scheduler.ErrRegistryNil, func() (*scheduler.Dispatcher, error) {
			return scheduler.NewDispatcher(store, nil, guard, limiter, backend)
		}},
		{"nil guard", scheduler.ErrGuardNil, func() (*scheduler.Dispatcher, error) {
			return scheduler.NewDispatcher(store, reg, nil, limiter, backend)
		}},
		{"nil limiter", scheduler.ErrLimiterNil, func() (*scheduler.Dispatcher, error) {
			return scheduler.NewDispatcher(store, reg, guard, nil, backend)
		}},
		{"nil backend", scheduler.ErrBackendNil, func() (*scheduler.Dispatcher, error) {
			return scheduler.NewDispatcher(store, reg, guard, limiter, nil)
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.fn()
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDispatchDisabledPlatform(t *testing.T) {
	t.Parallel()

	published := 0
	d, store, _ := newEnv(t,
		map[content.Platform]publisher.Publisher{
			content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
				published++
				return &publisher.Receipt{}, nil
			}),
		},
		nil,
		scheduler.WithPlatformConfig(publisher.StaticConfig{content.PlatformDiscord: false}),
	)

	item := scheduledItem(t, store)
	outcome := d.Dispatch(context.Background(), item, content.PlatformDiscord)

	assert.Equal(t, scheduler.OutcomeFailed, outcome)
	assert.Zero(t, published, "publisher must not be called for a disabled platform")
	assert.Zero(t, item.RetryCount, "fatal failures must not consume a retry")
	assert.Contains(t, item.IdempotencyKeys, content.PlatformDiscord,
		"fatal failures record the attempt fingerprint")
	assert.NotEmpty(t, item.PublishError)
}

func TestDispatchDuplicateSkipped(t *testing.T) {
	t.Parallel()

	published := 0
	d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
			published++
			return &publisher.Receipt{}, nil
		}),
	}, nil)

	item := scheduledItem(t, store)
	guard := idempotency.NewGuard()
	guard.RecordAttempt(item, content.PlatformDiscord)

	outcome := d.Dispatch(context.Background(), item, content.PlatformDiscord)
	assert.Equal(t, scheduler.OutcomeSkipped, outcome)
	assert.Zero(t, published)
}

func TestDispatchRateLimited(t *testing.T) {
	t.Parallel()

	published := 0
	d, store, backend := newEnv(t,
		map[content.Platform]publisher.Publisher{
			content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
				published++
				return &publisher.Receipt{}, nil
			}),
		},
		[]ratelimit.LimiterOption{ratelimit.WithQuotas(map[string]ratelimit.Quota{
			"discord": {Limit: 1, Window: time.Hour},
		})},
	)

	ctx := context.Background()
	item := scheduledItem(t, store)

	// First dispatch consumes the single slot.
	require.Equal(t, scheduler.OutcomePublished, d.Dispatch(ctx, item, content.PlatformDiscord))

	// Second item for the same owner within the window.
	second := item.Clone()
	second.ID = uuid.New()
	second.Status = content.StatusScheduled
	second.IdempotencyKeys = nil
	require.NoError(t, store.Create(ctx, second))

	outcome := d.Dispatch(ctx, second, content.PlatformDiscord)
	assert.Equal(t, scheduler.OutcomeQueued, outcome)
	assert.Equal(t, 1, published, "rate-limited dispatch must not reach the publisher")
	assert.Zero(t, second.RetryCount, "rate limiting must not consume a retry")

	job, err := backend.Claim(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, second.ID, job.ItemID)
	assert.Equal(t, "discord", job.Platform)
	assert.Equal(t, "rate_limited", job.Reason)
}

func TestDispatchPublishingPersistedBeforePublish(t *testing.T) {
	t.Parallel()

	store := content.NewMemoryStore()
	var statusDuringPublish content.Status

	reg, err := publisher.NewRegistry(map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
			stored, err := store.Get(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			statusDuringPublish = stored.Status
			return &publisher.Receipt{ExternalID: "x"}, nil
		}),
	})
	require.NoError(t, err)

	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore())
	require.NoError(t, err)
	d, err := scheduler.NewDispatcher(store, reg, idempotency.NewGuard(), limiter, queue.NewMemoryBackend())
	require.NoError(t, err)

	item := scheduledItem(t, store)
	outcome := d.Dispatch(context.Background(), item, content.PlatformDiscord)

	require.Equal(t, scheduler.OutcomePublished, outcome)
	assert.Equal(t, content.StatusPublishing, statusDuringPublish,
		"the publishing transition must hit storage before the external call")
}

func TestDispatchFatalPublishError(t *testing.T) {
	t.Parallel()

	d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
			return nil, publisher.ErrAuthRequired
		}),
	}, nil)

	item := scheduledItem(t, store)
	outcome := d.Dispatch(context.Background(), item, content.PlatformDiscord)

	assert.Equal(t, scheduler.OutcomeFailed, outcome)
	assert.Zero(t, item.RetryCount)
	assert.Contains(t, item.IdempotencyKeys, content.PlatformDiscord)
}

func TestDispatchTransientRetries(t *testing.T) {
	t.Parallel()

	d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
			return nil, errors.New("connection reset")
		}),
	}, nil)

	ctx := context.Background()
	item := scheduledItem(t, store)

	assert.Equal(t, scheduler.OutcomeRetrying, d.Dispatch(ctx, item, content.PlatformDiscord))
	assert.Equal(t, int8(1), item.RetryCount)
	assert.NotNil(t, item.LastRetryAt)

	assert.Equal(t, scheduler.OutcomeRetrying, d.Dispatch(ctx, item, content.PlatformDiscord))
	assert.Equal(t, int8(2), item.RetryCount)

	// Third transient failure exhausts the budget.
	assert.Equal(t, scheduler.OutcomeFailed, d.Dispatch(ctx, item, content.PlatformDiscord))
	assert.Equal(t, int8(3), item.RetryCount)
}

func TestDispatchMissingIntegration(t *testing.T) {
	t.Parallel()

	provider := integrationProviderFunc(func(ctx context.Context, ownerID uuid.UUID, platform content.Platform) (*publisher.Integration, error) {
		return nil, nil
	})

	d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: okPublisher(),
	}, nil, scheduler.WithIntegrations(provider))

	item := scheduledItem(t, store)
	outcome := d.Dispatch(context.Background(), item, content.PlatformDiscord)

	assert.Equal(t, scheduler.OutcomeFailed, outcome)
	assert.Zero(t, item.RetryCount)
}

type integrationProviderFunc func(ctx context.Context, ownerID uuid.UUID, platform content.Platform) (*publisher.Integration, error)

func (f integrationProviderFunc) ActiveIntegration(ctx context.Context, ownerID uuid.UUID, platform content.Platform) (*publisher.Integration, error) {
	return f(ctx, ownerID, platform)
}

func TestDispatchItemAggregation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("all published", func(t *testing.T) {
		t.Parallel()

		d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
			content.PlatformDiscord: okPublisher(),
			content.PlatformTwitter: okPublisher(),
		}, nil)

		item := scheduledItem(t, store, content.PlatformDiscord, content.PlatformTwitter)
		status, err := d.DispatchItem(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, content.StatusPublished, status)
		assert.NotNil(t, item.PublishedAt)

		stored, err := store.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, content.StatusPublished, stored.Status)
	})

	t.Run("queued platform wins", func(t *testing.T) {
		t.Parallel()

		d, store, _ := newEnv(t,
			map[content.Platform]publisher.Publisher{
				content.PlatformDiscord: okPublisher(),
				content.PlatformTwitter: okPublisher(),
			},
			[]ratelimit.LimiterOption{ratelimit.WithQuotas(map[string]ratelimit.Quota{
				"discord": {Limit: 100, Window: time.Hour},
				"twitter": {Limit: 0, Window: time.Hour},
			})},
		)

		item := scheduledItem(t, store, content.PlatformDiscord, content.PlatformTwitter)
		status, err := d.DispatchItem(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, content.StatusQueued, status)
	})

	t.Run("transient keeps retrying", func(t *testing.T) {
		t.Parallel()

		d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
			content.PlatformDiscord: okPublisher(),
			content.PlatformTwitter: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
				return nil, errors.New("timeout")
			}),
		}, nil)

		item := scheduledItem(t, store, content.PlatformDiscord, content.PlatformTwitter)
		status, err := d.DispatchItem(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, content.StatusRetrying, status)
	})

	t.Run("all fatal fails", func(t *testing.T) {
		t.Parallel()

		d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
			content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
				return nil, publisher.ErrAuthRequired
			}),
		}, nil)

		item := scheduledItem(t, store)
		status, err := d.DispatchItem(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, content.StatusFailed, status)

		stored, err := store.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, content.StatusFailed, stored.Status)
	})
}

func TestDispatchItemIdempotentReplay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	published := 0

	d, store, _ := newEnv(t, map[content.Platform]publisher.Publisher{
		content.PlatformDiscord: publisher.Func(func(ctx context.Context, item *content.Item, platform content.Platform) (*publisher.Receipt, error) {
			published++
			return &publisher.Receipt{}, nil
		}),
	}, nil)

	item := scheduledItem(t, store)

	status, err := d.DispatchItem(ctx, item)
	require.NoError(t, err)
	require.Equal(t, content.StatusPublished, status)
	require.Equal(t, 1, published)

	// Replaying the same item for the same scheduled time is screened out
	// by the duplicate guard and still aggregates as published.
	status, err = d.DispatchItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, content.StatusPublished, status)
	assert.Equal(t, 1, published, "replay must not publish twice")
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcomes []scheduler.Outcome
		want     content.Status
	}{
		{"all published", []scheduler.Outcome{scheduler.OutcomePublished}, content.StatusPublished},
		{"published and skipped", []scheduler.Outcome{scheduler.OutcomePublished, scheduler.OutcomeSkipped}, content.StatusPublished},
		{"queued dominates", []scheduler.Outcome{scheduler.OutcomePublished, scheduler.OutcomeQueued, scheduler.OutcomeFailed}, content.StatusQueued},
		{"retrying over failed", []scheduler.Outcome{scheduler.OutcomeFailed, scheduler.OutcomeRetrying}, content.StatusRetrying},
		{"all failed", []scheduler.Outcome{scheduler.OutcomeFailed, scheduler.OutcomeFailed}, content.StatusFailed},
		{"published with failed", []scheduler.Outcome{scheduler.OutcomePublished, scheduler.OutcomeFailed}, content.StatusFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scheduler.Aggregate(tt.outcomes))
		})
	}
}
