package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps attempt timestamps in process memory. Stale entries are
// pruned lazily on read, matching the Store contract.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryStore creates an empty in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string][]time.Time),
	}
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, key string, at time.Time, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[key] = append(s.windows[key], at)
	return nil
}

// InWindow implements Store.
func (s *MemoryStore) InWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	surviving := s.windows[key][:0]
	var oldest time.Time

	for _, ts := range s.windows[key] {
		if ts.After(cutoff) {
			surviving = append(surviving, ts)
			if oldest.IsZero() || ts.Before(oldest) {
				oldest = ts
			}
		}
	}

	if len(surviving) == 0 {
		delete(s.windows, key)
		return 0, time.Time{}, nil
	}

	s.windows[key] = surviving
	return len(surviving), oldest, nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}
