package content_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
)

func TestStatusCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    content.Status
		to      content.Status
		allowed bool
	}{
		{"scheduled to publishing", content.StatusScheduled, content.StatusPublishing, true},
		{"scheduled to queued", content.StatusScheduled, content.StatusQueued, true},
		{"queued to publishing", content.StatusQueued, content.StatusPublishing, true},
		{"publishing to published", content.StatusPublishing, content.StatusPublished, true},
		{"publishing to retrying", content.StatusPublishing, content.StatusRetrying, true},
		{"publishing to failed", content.StatusPublishing, content.StatusFailed, true},
		{"publishing back to queued", content.StatusPublishing, content.StatusQueued, true},
		{"retrying to publishing", content.StatusRetrying, content.StatusPublishing, true},
		{"same state is a no-op", content.StatusQueued, content.StatusQueued, true},
		{"scheduled cannot jump to published", content.StatusScheduled, content.StatusPublished, false},
		{"published is terminal", content.StatusPublished, content.StatusPublishing, false},
		{"failed is terminal", content.StatusFailed, content.StatusRetrying, false},
		{"queued cannot fail directly", content.StatusQueued, content.StatusFailed, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, content.StatusPublished.Terminal())
	assert.True(t, content.StatusFailed.Terminal())
	assert.False(t, content.StatusRetrying.Terminal())
	assert.False(t, content.StatusQueued.Terminal())
}

func TestPlatformValid(t *testing.T) {
	t.Parallel()

	for _, p := range content.KnownPlatforms() {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, content.Platform("myspace").Valid())
}

func TestItemClone(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	item := &content.Item{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Title:     "stream announcement",
		Platforms: []content.Platform{content.PlatformTwitch, content.PlatformDiscord},
		IdempotencyKeys: map[content.Platform]string{
			content.PlatformTwitch: "abc",
		},
		LastRetryAt: &now,
		Recurrence:  &content.Recurrence{Enabled: true, Frequency: content.FrequencyWeekly, Count: 3},
	}

	clone := item.Clone()
	clone.Platforms[0] = content.PlatformTwitter
	clone.IdempotencyKeys[content.PlatformDiscord] = "xyz"
	clone.Recurrence.Count = 99

	assert.Equal(t, content.PlatformTwitch, item.Platforms[0])
	assert.NotContains(t, item.IdempotencyKeys, content.PlatformDiscord)
	assert.Equal(t, 3, item.Recurrence.Count)
}

func TestItemNextOccurrence(t *testing.T) {
	t.Parallel()

	retryAt := time.Now().UTC()
	publishedAt := retryAt.Add(time.Minute)
	item := &content.Item{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Title:        "weekly recap",
		Body:         "this week on stream",
		Status:       content.StatusPublished,
		RetryCount:   2,
		LastRetryAt:  &retryAt,
		PublishError: "earlier transient failure",
		IdempotencyKeys: map[content.Platform]string{
			content.PlatformTwitter: "k",
		},
		PublishedAt: &publishedAt,
		Recurrence:  &content.Recurrence{Enabled: true, Frequency: content.FrequencyWeekly, Count: 3},
	}

	nextTime := time.Now().UTC().AddDate(0, 0, 7)
	next := item.NextOccurrence(nextTime)

	assert.NotEqual(t, item.ID, next.ID)
	assert.Equal(t, nextTime, next.ScheduledFor)
	assert.Equal(t, content.StatusScheduled, next.Status)
	assert.Zero(t, next.RetryCount)
	assert.Nil(t, next.LastRetryAt)
	assert.Empty(t, next.PublishError)
	assert.Nil(t, next.IdempotencyKeys)
	assert.Nil(t, next.PublishedAt)
	assert.Equal(t, item.Title, next.Title)
	assert.Equal(t, item.Recurrence, next.Recurrence)

	// The original row is untouched.
	assert.Equal(t, content.StatusPublished, item.Status)
}

func TestItemSameSeries(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	t.Run("explicit series id wins", func(t *testing.T) {
		t.Parallel()

		a := &content.Item{OwnerID: owner, Title: "same", Body: "same",
			Recurrence: &content.Recurrence{SeriesID: "series-1"}}
		b := &content.Item{OwnerID: owner, Title: "same", Body: "same",
			Recurrence: &content.Recurrence{SeriesID: "series-2"}}

		assert.False(t, a.SameSeries(b))
	})

	t.Run("falls back to content equality", func(t *testing.T) {
		t.Parallel()

		a := &content.Item{OwnerID: owner, Title: "recap", Body: "text"}
		b := &content.Item{OwnerID: owner, Title: "recap", Body: "text"}
		c := &content.Item{OwnerID: uuid.New(), Title: "recap", Body: "text"}

		assert.True(t, a.SameSeries(b))
		assert.False(t, a.SameSeries(c))
	})
}

func TestRecurringRequiresEnabled(t *testing.T) {
	t.Parallel()

	item := &content.Item{Recurrence: &content.Recurrence{Enabled: false}}
	assert.False(t, item.Recurring())

	item.Recurrence.Enabled = true
	assert.True(t, item.Recurring())

	require.False(t, (&content.Item{}).Recurring())
}
