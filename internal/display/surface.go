// Package display defines where animation frames go once the scheduler has
// produced them: a Surface receives protocol envelopes, and implementations
// fan them out to WebSocket clients or a terminal preview.
package display

import (
	"github.com/uninav/wayfinder/pkg/streaming"
)

// Surface presents display protocol messages to a front-end.
type Surface interface {
	Present(env streaming.Envelope) error
	Close() error
}

// Multi fans every envelope out to all surfaces. A failing surface does not
// block the others.
type Multi []Surface

// Present sends the envelope to every surface, returning the first error.
func (m Multi) Present(env streaming.Envelope) error {
	var firstErr error
	for _, s := range m {
		if err := s.Present(env); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all surfaces, returning the first error.
func (m Multi) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
