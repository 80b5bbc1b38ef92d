package store

import (
	"context"
	"sync"
	"time"
)

type record struct {
	value     []byte
	expiresAt time.Time
}

func (r record) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && r.expiresAt.Before(now)
}

// MemStore is an in-memory Store.  Expired records are evicted lazily on
// access, so an idle store holds stale records no longer than the next Get
// or Set touching them.
type MemStore struct {
	mu      sync.Mutex
	records map[string]record
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records: map[string]record{},
	}
}

// Get implements Store.Get.
func (s *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	if r.expired(time.Now()) {
		delete(s.records, key)
		return nil, ErrNotFound
	}
	// copy so callers can't mutate the stored value
	value := make([]byte, len(r.value))
	copy(value, r.value)
	return value, nil
}

// Set implements Store.Set.
func (s *MemStore) Set(_ context.Context, key string, value []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = record{value: stored, expiresAt: expiresAt}
	return nil
}

// Destroy implements Store.Destroy.
func (s *MemStore) Destroy(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Len reports the number of records currently held, counting records whose
// expiry has passed but which haven't been evicted yet.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
