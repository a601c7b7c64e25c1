package ratelimit

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptMember(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 30, 12, 0, 0, 123456789, time.UTC)

	t.Run("same instant yields distinct members", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			member := attemptMember(at)
			_, dup := seen[member]
			require.False(t, dup, "member %q collided", member)
			seen[member] = struct{}{}
		}
	})

	t.Run("member carries the attempt timestamp", func(t *testing.T) {
		t.Parallel()

		member := attemptMember(at)
		prefix, _, found := strings.Cut(member, ":")
		require.True(t, found)

		nanos, err := strconv.ParseInt(prefix, 10, 64)
		require.NoError(t, err)
		assert.Equal(t, at.UnixNano(), nanos)
	})
}
