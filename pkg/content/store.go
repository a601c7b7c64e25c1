package content

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists scheduled items and answers the due-item selection query.
// All timestamps are UTC.
type Store interface {
	// Create inserts a new item.
	Create(ctx context.Context, item *Item) error

	// Get returns the item with the given id, or ErrItemNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Item, error)

	// Update persists the item's mutable fields. It rejects updates whose
	// status change violates the state machine with ErrInvalidTransition.
	Update(ctx context.Context, item *Item) error

	// ListDue returns up to limit items eligible for a publish attempt at
	// now, ordered by scheduled_for ascending (oldest due first):
	//
	//   1. scheduled items whose time has arrived,
	//   2. queued items (re-evaluated every tick),
	//   3. retrying items whose backoff interval has elapsed.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Item, error)

	// CountPublishedInSeries counts published occurrences belonging to the
	// same recurring series as item, used to enforce the recurrence cap.
	CountPublishedInSeries(ctx context.Context, item *Item) (int, error)

	// Reschedule moves the item to a new publication time. Rescheduling
	// resets idempotency keys and retry bookkeeping and returns the item
	// to the scheduled state.
	Reschedule(ctx context.Context, id uuid.UUID, at time.Time) error
}
