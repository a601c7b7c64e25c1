package queue

import (
	"context"
	"time"
)

// Handler processes a claimed job. Returning an error sends the job back
// through Backend.Fail for redelivery or dead-lettering.
type Handler func(ctx context.Context, job *Job) error

// Backend stores deferred publish jobs. Claiming removes the job from the
// queue; a job that fails processing must be handed back via Fail, which
// either re-delays it with backoff or dead-letters it once attempts are
// exhausted. Successful jobs need no acknowledgement.
type Backend interface {
	// Enqueue adds a job. Jobs with a future NextAttemptAt stay invisible
	// to Claim until that moment passes.
	Enqueue(ctx context.Context, job *Job) error

	// Claim removes and returns the job with the earliest due
	// NextAttemptAt, or ErrNoJobReady when nothing is due.
	Claim(ctx context.Context, now time.Time) (*Job, error)

	// Fail records a failed attempt. The job is re-enqueued with a
	// linearly growing delay, or dead-lettered when exhausted.
	Fail(ctx context.Context, job *Job, errMsg string) error

	// Stats reports current queue depths.
	Stats(ctx context.Context) (Stats, error)

	// Close releases backend resources. Further calls return
	// ErrBackendClosed.
	Close() error
}
