package scheduler

import (
	"context"
	"time"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
)

// DefaultBatchLimit caps how many due items one tick picks up.
const DefaultBatchLimit = 50

// Selector pulls the batch of items eligible for a publish attempt. The
// ordering guarantee (oldest due first) lives in the store query; the
// selector only bounds the batch.
type Selector struct {
	store content.Store
	limit int
}

// NewSelector creates a Selector. A non-positive limit falls back to
// DefaultBatchLimit.
func NewSelector(store content.Store, limit int) (*Selector, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	return &Selector{store: store, limit: limit}, nil
}

// SelectDue returns up to the configured limit of items due at now.
func (s *Selector) SelectDue(ctx context.Context, now time.Time) ([]*content.Item, error) {
	return s.store.ListDue(ctx, now, s.limit)
}
