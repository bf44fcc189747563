package cache

import "sync"

// OfflineTracker records whether the kiosk is currently serving from cache.
// The UI is notified once per offline episode: the first fallback after a
// successful fetch reports a transition, repeat failures stay silent until
// connectivity returns.
type OfflineTracker struct {
	mu      sync.Mutex
	offline bool
}

// NewOfflineTracker starts in the online state.
func NewOfflineTracker() *OfflineTracker {
	return &OfflineTracker{}
}

// MarkOffline records a fetch failure served from cache. It returns true
// only on the online-to-offline transition.
func (t *OfflineTracker) MarkOffline() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.offline {
		return false
	}
	t.offline = true
	return true
}

// MarkOnline records a successful fetch. It returns true only on the
// offline-to-online transition.
func (t *OfflineTracker) MarkOnline() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.offline {
		return false
	}
	t.offline = false
	return true
}

// Offline reports the current state.
func (t *OfflineTracker) Offline() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offline
}
