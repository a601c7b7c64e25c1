package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/ratelimit"
)

func TestMemoryStoreInWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	window := 10 * time.Minute

	t.Run("empty window", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore()
		count, oldest, err := store.InWindow(ctx, "k", time.Now(), window)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.True(t, oldest.IsZero())
	})

	t.Run("counts and reports oldest surviving attempt", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore()
		now := time.Now()

		first := now.Add(-8 * time.Minute)
		second := now.Add(-2 * time.Minute)
		require.NoError(t, store.Record(ctx, "k", first, window))
		require.NoError(t, store.Record(ctx, "k", second, window))

		count, oldest, err := store.InWindow(ctx, "k", now, window)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, first, oldest)
	})

	t.Run("prunes stale entries lazily", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore()
		now := time.Now()

		stale := now.Add(-11 * time.Minute)
		fresh := now.Add(-time.Minute)
		require.NoError(t, store.Record(ctx, "k", stale, window))
		require.NoError(t, store.Record(ctx, "k", fresh, window))

		count, oldest, err := store.InWindow(ctx, "k", now, window)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, fresh, oldest)
	})

	t.Run("reset removes the key", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore()
		now := time.Now()
		require.NoError(t, store.Record(ctx, "k", now, window))
		require.NoError(t, store.Reset(ctx, "k"))

		count, _, err := store.InWindow(ctx, "k", now, window)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore()
		now := time.Now()
		require.NoError(t, store.Record(ctx, "a", now, window))

		count, _, err := store.InWindow(ctx, "b", now, window)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
