package queue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend keeps jobs in process memory, ordered by NextAttemptAt.
// Suitable for a single scheduler process and for tests; jobs do not
// survive restarts.
type MemoryBackend struct {
	mu         sync.Mutex
	jobs       []*Job
	dead       []*Job
	retryDelay time.Duration
	closed     bool
}

// MemoryBackendOption configures a MemoryBackend.
type MemoryBackendOption func(*MemoryBackend)

// WithRetryDelay overrides the base redelivery delay (default 5 minutes).
func WithRetryDelay(d time.Duration) MemoryBackendOption {
	return func(b *MemoryBackend) {
		if d > 0 {
			b.retryDelay = d
		}
	}
}

// NewMemoryBackend creates an empty in-memory job queue.
func NewMemoryBackend(opts ...MemoryBackendOption) *MemoryBackend {
	b := &MemoryBackend{
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enqueue implements Backend.
func (b *MemoryBackend) Enqueue(ctx context.Context, job *Job) error {
	if job == nil {
		return ErrJobNil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}

	clone := *job
	b.jobs = append(b.jobs, &clone)
	sort.SliceStable(b.jobs, func(i, j int) bool {
		return b.jobs[i].NextAttemptAt.Before(b.jobs[j].NextAttemptAt)
	})
	return nil
}

// Claim implements Backend.
func (b *MemoryBackend) Claim(ctx context.Context, now time.Time) (*Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBackendClosed
	}
	if len(b.jobs) == 0 || b.jobs[0].NextAttemptAt.After(now) {
		return nil, ErrNoJobReady
	}

	job := b.jobs[0]
	b.jobs = b.jobs[1:]

	clone := *job
	return &clone, nil
}

// Fail implements Backend.
func (b *MemoryBackend) Fail(ctx context.Context, job *Job, errMsg string) error {
	if job == nil {
		return ErrJobNil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}

	clone := *job
	clone.Attempts++
	clone.LastError = errMsg

	if clone.Exhausted() {
		b.dead = append(b.dead, &clone)
		return nil
	}

	clone.NextAttemptAt = time.Now().Add(b.retryDelay * time.Duration(clone.Attempts))
	b.jobs = append(b.jobs, &clone)
	sort.SliceStable(b.jobs, func(i, j int) bool {
		return b.jobs[i].NextAttemptAt.Before(b.jobs[j].NextAttemptAt)
	})
	return nil
}

// Stats implements Backend.
func (b *MemoryBackend) Stats(ctx context.Context) (Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Stats{}, ErrBackendClosed
	}

	now := time.Now()
	stats := Stats{Dead: int64(len(b.dead))}
	for _, job := range b.jobs {
		if job.NextAttemptAt.After(now) {
			stats.Delayed++
		} else {
			stats.Ready++
		}
	}
	return stats, nil
}

// DeadLetters returns copies of the jobs that exhausted all attempts.
func (b *MemoryBackend) DeadLetters() []*Job {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Job, 0, len(b.dead))
	for _, job := range b.dead {
		clone := *job
		out = append(out, &clone)
	}
	return out
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	b.closed = true
	b.jobs = nil
	b.dead = nil
	return nil
}
