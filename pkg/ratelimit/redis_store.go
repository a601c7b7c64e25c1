package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps attempt timestamps in a Redis sorted set per key, scored
// by unix nanoseconds. This is the store to use when the scheduler may move
// between nodes: the window survives process restarts and is shared.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the Redis key namespace (default "ratelimit:").
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates an attempt store on top of an existing Redis client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, key string, at time.Time, window time.Duration) error {
	redisKey := s.keyPrefix + key
	score := float64(at.UnixNano())

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: score, Member: attemptMember(at)})
	// Expire a little past the window so lazily-pruned keys still vanish
	// on their own when an owner goes quiet.
	pipe.Expire(ctx, redisKey, window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record rate limit attempt: %w", err)
	}
	return nil
}

// attemptMember builds the sorted-set member for one attempt. The random
// suffix keeps attempts recorded in the same nanosecond from collapsing
// into a single entry; the window only ever reads scores.
func attemptMember(at time.Time) string {
	return strconv.FormatInt(at.UnixNano(), 10) + ":" + uuid.NewString()
}

// InWindow implements Store.
func (s *RedisStore) InWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	redisKey := s.keyPrefix + key
	cutoff := now.Add(-window).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read rate limit window: %w", err)
	}

	count := int(countCmd.Val())
	var oldest time.Time
	if entries := oldestCmd.Val(); len(entries) > 0 {
		oldest = time.Unix(0, int64(entries[0].Score))
	}
	return count, oldest, nil
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit window: %w", err)
	}
	return nil
}
