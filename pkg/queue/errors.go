package queue

import "errors"

var (
	// ErrJobNil is returned when a nil job is passed to a backend.
	ErrJobNil = errors.New("job is nil")

	// ErrNoJobReady is returned by Claim when no job is due. Callers treat
	// this as a normal empty poll, not a failure.
	ErrNoJobReady = errors.New("no job ready")

	// ErrBackendNil is returned when constructing a worker without a backend.
	ErrBackendNil = errors.New("backend is nil")

	// ErrHandlerNil is returned when constructing a worker without a handler.
	ErrHandlerNil = errors.New("handler is nil")

	// ErrBackendClosed is returned by operations on a closed backend.
	ErrBackendClosed = errors.New("backend is closed")

	// ErrWorkerStarted is returned when starting an already running worker.
	ErrWorkerStarted = errors.New("worker already started")

	// ErrWorkerNotStarted is returned when stopping a worker that never ran.
	ErrWorkerNotStarted = errors.New("worker not started")
)
