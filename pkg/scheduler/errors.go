package scheduler

import "errors"

var (
	// ErrStoreNil is returned when constructing a component without a store.
	ErrStoreNil = errors.New("item store is nil")

	// ErrRegistryNil is returned when constructing a dispatcher without a
	// publisher registry.
	ErrRegistryNil = errors.New("publisher registry is nil")

	// ErrGuardNil is returned when constructing a dispatcher without an
	// idempotency guard.
	ErrGuardNil = errors.New("idempotency guard is nil")

	// ErrLimiterNil is returned when constructing a dispatcher without a
	// rate limiter.
	ErrLimiterNil = errors.New("rate limiter is nil")

	// ErrBackendNil is returned when constructing a dispatcher without a
	// queue backend.
	ErrBackendNil = errors.New("queue backend is nil")

	// ErrDispatcherNil is returned when constructing an orchestrator
	// without a dispatcher.
	ErrDispatcherNil = errors.New("dispatcher is nil")

	// ErrUnknownFrequency is returned by the recurrence expander for a
	// frequency outside the daily/weekly/monthly set.
	ErrUnknownFrequency = errors.New("unknown recurrence frequency")

	// ErrAlreadyStarted is returned when starting a running orchestrator.
	ErrAlreadyStarted = errors.New("orchestrator already started")

	// ErrNotStarted is returned when stopping an orchestrator that never ran.
	ErrNotStarted = errors.New("orchestrator not started")
)
