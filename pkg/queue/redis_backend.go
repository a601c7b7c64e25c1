package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores jobs in a Redis sorted set scored by NextAttemptAt,
// so delayed and ready jobs live in one structure and become claimable the
// moment their score passes. Dead-lettered jobs go to a list for manual
// inspection. Claims race through ZRem: whoever removes the member owns the
// job, so multiple scheduler processes can share one backend.
type RedisBackend struct {
	client  redis.UniversalClient
	jobsKey string
	deadKey string
	delay   time.Duration
	closed  atomic.Bool
}

// RedisBackendOption configures a RedisBackend.
type RedisBackendOption func(*RedisBackend)

// WithNamespace sets the key prefix for the backend's Redis keys
// (default "queue").
func WithNamespace(ns string) RedisBackendOption {
	return func(b *RedisBackend) {
		if ns != "" {
			b.jobsKey = ns + ":jobs"
			b.deadKey = ns + ":dead"
		}
	}
}

// WithRedisRetryDelay overrides the base redelivery delay (default 5 minutes).
func WithRedisRetryDelay(d time.Duration) RedisBackendOption {
	return func(b *RedisBackend) {
		if d > 0 {
			b.delay = d
		}
	}
}

// NewRedisBackend creates a job queue on top of an existing Redis client.
// The client's lifecycle belongs to the caller; Close does not close it.
func NewRedisBackend(client redis.UniversalClient, opts ...RedisBackendOption) (*RedisBackend, error) {
	if client == nil {
		return nil, ErrBackendNil
	}

	b := &RedisBackend{
		client:  client,
		jobsKey: "queue:jobs",
		deadKey: "queue:dead",
		delay:   DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Enqueue implements Backend.
func (b *RedisBackend) Enqueue(ctx context.Context, job *Job) error {
	if job == nil {
		return ErrJobNil
	}
	if b.closed.Load() {
		return ErrBackendClosed
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = b.client.ZAdd(ctx, b.jobsKey, redis.Z{
		Score:  float64(job.NextAttemptAt.UnixNano()),
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Claim implements Backend.
func (b *RedisBackend) Claim(ctx context.Context, now time.Time) (*Job, error) {
	if b.closed.Load() {
		return nil, ErrBackendClosed
	}

	for {
		entries, err := b.client.ZRangeByScoreWithScores(ctx, b.jobsKey, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    strconv.FormatInt(now.UnixNano(), 10),
			Offset: 0,
			Count:  1,
		}).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read job queue: %w", err)
		}
		if len(entries) == 0 {
			return nil, ErrNoJobReady
		}

		member, ok := entries[0].Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T in job queue", entries[0].Member)
		}

		removed, err := b.client.ZRem(ctx, b.jobsKey, member).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to claim job: %w", err)
		}
		if removed == 0 {
			// Another claimer won the race; try the next due job.
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w", err)
		}
		return &job, nil
	}
}

// Fail implements Backend.
func (b *RedisBackend) Fail(ctx context.Context, job *Job, errMsg string) error {
	if job == nil {
		return ErrJobNil
	}
	if b.closed.Load() {
		return ErrBackendClosed
	}

	clone := *job
	clone.Attempts++
	clone.LastError = errMsg

	payload, err := json.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if clone.Exhausted() {
		if err := b.client.LPush(ctx, b.deadKey, payload).Err(); err != nil {
			return fmt.Errorf("failed to dead-letter job: %w", err)
		}
		return nil
	}

	clone.NextAttemptAt = time.Now().Add(b.delay * time.Duration(clone.Attempts))
	payload, err = json.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = b.client.ZAdd(ctx, b.jobsKey, redis.Z{
		Score:  float64(clone.NextAttemptAt.UnixNano()),
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to re-enqueue job: %w", err)
	}
	return nil
}

// Stats implements Backend.
func (b *RedisBackend) Stats(ctx context.Context) (Stats, error) {
	if b.closed.Load() {
		return Stats{}, ErrBackendClosed
	}

	now := strconv.FormatInt(time.Now().UnixNano(), 10)

	pipe := b.client.TxPipeline()
	readyCmd := pipe.ZCount(ctx, b.jobsKey, "-inf", now)
	delayedCmd := pipe.ZCount(ctx, b.jobsKey, "("+now, "+inf")
	deadCmd := pipe.LLen(ctx, b.deadKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("failed to read queue stats: %w", err)
	}

	return Stats{
		Ready:   readyCmd.Val(),
		Delayed: delayedCmd.Val(),
		Dead:    deadCmd.Val(),
	}, nil
}

// Close implements Backend.
func (b *RedisBackend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return ErrBackendClosed
	}
	return nil
}
