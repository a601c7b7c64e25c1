package ratelimit

import "errors"

var (
	// ErrStoreRequired is returned when a limiter is constructed without a store.
	ErrStoreRequired = errors.New("store is required")

	// ErrUnknownPlatform is returned when no quota is configured for a platform.
	ErrUnknownPlatform = errors.New("no quota configured for platform")
)
