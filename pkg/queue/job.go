package queue

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxAttempts bounds how many times a job is handed to the
	// handler before it is dead-lettered.
	DefaultMaxAttempts int8 = 3

	// DefaultRetryDelay is the base delay between attempts. Actual delay
	// grows linearly with the attempt count.
	DefaultRetryDelay = 5 * time.Minute
)

// Job is a deferred publish request for a single (item, platform) pair.
// Jobs are created when an immediate dispatch cannot proceed, most commonly
// because the owner's platform quota is exhausted.
type Job struct {
	ID            uuid.UUID `json:"id"`
	ItemID        uuid.UUID `json:"item_id"`
	Platform      string    `json:"platform"`
	Reason        string    `json:"reason,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Attempts      int8      `json:"attempts"`
	MaxAttempts   int8      `json:"max_attempts"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
}

// JobOption configures a Job at creation time.
type JobOption func(*Job)

// WithDelay defers the job's first attempt by d.
func WithDelay(d time.Duration) JobOption {
	return func(j *Job) {
		if d > 0 {
			j.NextAttemptAt = j.EnqueuedAt.Add(d)
		}
	}
}

// WithMaxAttempts overrides the attempt ceiling.
func WithMaxAttempts(n int8) JobOption {
	return func(j *Job) {
		if n > 0 {
			j.MaxAttempts = n
		}
	}
}

// WithReason records why the item was queued instead of dispatched.
func WithReason(reason string) JobOption {
	return func(j *Job) { j.Reason = reason }
}

// NewJob creates a job that is ready for immediate pickup unless delayed
// via WithDelay.
func NewJob(itemID uuid.UUID, platform string, opts ...JobOption) *Job {
	now := time.Now()
	j := &Job{
		ID:            uuid.New(),
		ItemID:        itemID,
		Platform:      platform,
		MaxAttempts:   DefaultMaxAttempts,
		EnqueuedAt:    now,
		NextAttemptAt: now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Exhausted reports whether the job has used up all its attempts.
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// Stats is a point-in-time snapshot of a backend's queue depths.
type Stats struct {
	// Ready is the number of jobs eligible for pickup right now.
	Ready int64 `json:"ready"`

	// Delayed is the number of jobs waiting for their NextAttemptAt.
	Delayed int64 `json:"delayed"`

	// Dead is the number of jobs that exhausted all attempts.
	Dead int64 `json:"dead"`
}
