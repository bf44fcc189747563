// Package cache is a write-through store of last-successful navigation API
// responses, read back as a fallback when the network fails. Entries carry a
// timestamp and are treated as absent once older than the configured max age.
package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultMaxAge is how long a cached response stays servable.
const DefaultMaxAge = 24 * time.Hour

// keyPrefix namespaces all cache keys written by this program.
const keyPrefix = "wayfinder"

// Entry is one cached response value with its write time.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     json.RawMessage `json:"value"`
}

// Key derives the storage key for a logical resource. Keys embed the API
// base URL so switching backends never serves stale cross-environment data.
func Key(apiBaseURL, logical string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, apiBaseURL, logical)
}

// Store persists cache entries. Implementations must be safe for concurrent
// use.
type Store interface {
	Put(key string, e Entry) error
	Get(key string) (Entry, bool)
	Purge(olderThan time.Time) error
	Close() error
}

// ResponseCache enforces the freshness contract over a Store.
type ResponseCache struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
}

// NewResponseCache wraps a store with the given max entry age. A
// non-positive maxAge falls back to DefaultMaxAge.
func NewResponseCache(store Store, maxAge time.Duration) *ResponseCache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &ResponseCache{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SetClock overrides the cache's time source. Used by tests.
func (c *ResponseCache) SetClock(now func() time.Time) {
	c.now = now
}

// Write stores a successful response under the given key.
func (c *ResponseCache) Write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	return c.store.Put(key, Entry{Timestamp: c.now(), Value: raw})
}

// Read unmarshals the cached value for key into out. It returns false when
// the entry is missing, older than the max age, or corrupt. Staleness is
// absence, never an error, so callers fall through to their own "no data"
// handling.
func (c *ResponseCache) Read(key string, out any) bool {
	e, ok := c.store.Get(key)
	if !ok {
		return false
	}
	if c.now().Sub(e.Timestamp) > c.maxAge {
		return false
	}
	if err := json.Unmarshal(e.Value, out); err != nil {
		return false
	}
	return true
}

// Close releases the underlying store.
func (c *ResponseCache) Close() error {
	return c.store.Close()
}
