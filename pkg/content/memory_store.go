package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRetryBackoff is the minimum wait between publish retries.
const DefaultRetryBackoff = 5 * time.Minute

// MemoryStore is an in-memory Store for testing and single-process setups.
// Items are deep-copied on the way in and out to prevent callers from
// mutating stored state directly.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item

	retryBackoff time.Duration
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithRetryBackoff sets the wait applied to retrying items during due-item
// selection.
func WithRetryBackoff(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		items:        make(map[uuid.UUID]*Item),
		retryBackoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, item *Item) error {
	if item == nil {
		return ErrItemNil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return ErrItemExists
	}

	s.items[item.ID] = item.Clone()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item.Clone(), nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return ErrItemNil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[item.ID]
	if !ok {
		return ErrItemNotFound
	}

	if !current.Status.CanTransition(item.Status) {
		return ErrInvalidTransition
	}

	s.items[item.ID] = item.Clone()
	return nil
}

// ListDue implements Store.
func (s *MemoryStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*Item
	for _, item := range s.items {
		if s.eligible(item, now) {
			due = append(due, item.Clone())
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStore) eligible(item *Item, now time.Time) bool {
	switch item.Status {
	case StatusScheduled:
		return !item.ScheduledFor.After(now)
	case StatusQueued:
		return true
	case StatusRetrying:
		return item.LastRetryAt == nil || now.Sub(*item.LastRetryAt) >= s.retryBackoff
	}
	return false
}

// CountPublishedInSeries implements Store.
func (s *MemoryStore) CountPublishedInSeries(ctx context.Context, item *Item) (int, error) {
	if item == nil {
		return 0, ErrItemNil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, stored := range s.items {
		if stored.Status == StatusPublished && item.SameSeries(stored) {
			count++
		}
	}
	return count, nil
}

// Reschedule implements Store.
func (s *MemoryStore) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return ErrItemNotFound
	}

	item.ScheduledFor = at
	item.Status = StatusScheduled
	item.RetryCount = 0
	item.LastRetryAt = nil
	item.PublishError = ""
	item.IdempotencyKeys = nil
	return nil
}
