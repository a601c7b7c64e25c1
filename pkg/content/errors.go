package content

import "errors"

var (
	// ErrItemNotFound is returned when the requested item does not exist.
	ErrItemNotFound = errors.New("scheduled item not found")

	// ErrItemExists is returned when creating an item whose ID is already stored.
	ErrItemExists = errors.New("scheduled item already exists")

	// ErrInvalidTransition is returned when an update would violate the
	// status state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrItemNil is returned when a nil item is passed to a store operation.
	ErrItemNil = errors.New("item cannot be nil")
)
