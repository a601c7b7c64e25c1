package queue

import (
	"log/slog"
	"time"
)

type workerOptions struct {
	pullInterval      time.Duration
	jobTimeout        time.Duration
	maxConcurrentJobs int
	logger            *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

// WithPullInterval sets how often the worker polls the backend
// (default 5 seconds).
func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pullInterval = d
		}
	}
}

// WithJobTimeout bounds a single handler invocation (default 1 minute).
func WithJobTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.jobTimeout = d
		}
	}
}

// WithMaxConcurrentJobs sets how many jobs may run at once (default 1).
func WithMaxConcurrentJobs(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrentJobs = n
		}
	}
}

// WithWorkerLogger sets the worker's logger.
func WithWorkerLogger(log *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if log != nil {
			o.logger = log
		}
	}
}
