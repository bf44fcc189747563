package cache

import (
	"sync"
	"time"
)

// MemoryStore keeps cache entries in a mutex-guarded map. It is the fallback
// when no persistent store can be opened; entries do not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Put stores an entry under key, replacing any previous value.
func (s *MemoryStore) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

// Get retrieves the entry stored under key.
func (s *MemoryStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Purge drops entries written before olderThan.
func (s *MemoryStore) Purge(olderThan time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if e.Timestamp.Before(olderThan) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Reset clears all entries.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}
