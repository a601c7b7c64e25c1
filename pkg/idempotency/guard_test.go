package idempotency_test

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
)

func TestKeyDeterminism(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	k1 := idempotency.Key(itemID, "twitter", at)
	k2 := idempotency.Key(itemID, "twitter", at)
	assert.Equal(t, k1, k2)

	assert.NotEqual(t, k1, idempotency.Key(uuid.New(), "twitter", at))
	assert.NotEqual(t, k1, idempotency.Key(itemID, "discord", at))
	assert.NotEqual(t, k1, idempotency.Key(itemID, "twitter", at.Add(time.Second)))

	// Location must not matter, only the instant.
	loc := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, k1, idempotency.Key(itemID, "twitter", at.In(loc)))
}

func TestGuardDuplicateDetection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newTestItem := func() *content.Item {
		return &content.Item{
			ID:           uuid.New(),
			ScheduledFor: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Platforms:    []content.Platform{content.PlatformTwitter},
		}
	}

	t.Run("not duplicate before any attempt", func(t *testing.T) {
		t.Parallel()

		guard := idempotency.NewGuard()
		assert.False(t, guard.IsDuplicate(ctx, newTestItem(), content.PlatformTwitter))
	})

	t.Run("duplicate after recorded attempt", func(t *testing.T) {
		t.Parallel()

		guard := idempotency.NewGuard()
		item := newTestItem()

		guard.RecordAttempt(item, content.PlatformTwitter)
		assert.True(t, guard.IsDuplicate(ctx, item, content.PlatformTwitter))

		// Other platforms are unaffected.
		assert.False(t, guard.IsDuplicate(ctx, item, content.PlatformDiscord))
	})

	t.Run("reschedule invalidates recorded key", func(t *testing.T) {
		t.Parallel()

		guard := idempotency.NewGuard()
		item := newTestItem()

		guard.RecordAttempt(item, content.PlatformTwitter)
		require.True(t, guard.IsDuplicate(ctx, item, content.PlatformTwitter))

		item.ScheduledFor = item.ScheduledFor.Add(24 * time.Hour)
		assert.False(t, guard.IsDuplicate(ctx, item, content.PlatformTwitter))
	})

	t.Run("clear all allows re-delivery", func(t *testing.T) {
		t.Parallel()

		guard := idempotency.NewGuard()
		item := newTestItem()

		guard.RecordAttempt(item, content.PlatformTwitter)
		guard.ClearAll(item)
		assert.False(t, guard.IsDuplicate(ctx, item, content.PlatformTwitter))
	})
}

func TestGuardFailurePolicy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	failing := func(_ context.Context, _ *content.Item, _ content.Platform) (string, bool, error) {
		return "", false, errors.New("storage unavailable")
	}

	item := &content.Item{ID: uuid.New(), ScheduledFor: time.Now().UTC()}

	t.Run("fail open proceeds with delivery", func(t *testing.T) {
		t.Parallel()

		guard := idempotency.NewGuard(
			idempotency.WithLookup(failing),
			idempotency.WithFailurePolicy(idempotency.FailOpen),
		)
		assert.False(t, guard.IsDuplicate(ctx, item, content.PlatformTwitter))
	})

	t.Run("fail closed skips delivery", func(t *testing.T) {
		t.Parallel()

		guard := idempotency.NewGuard(
			idempotency.WithLookup(failing),
			idempotency.WithFailurePolicy(idempotency.FailClosed),
		)
		assert.True(t, guard.IsDuplicate(ctx, item, content.PlatformTwitter))
	})
}
