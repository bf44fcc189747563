// Package idle arms the inactivity timer that returns a kiosk to its attract
// screen.
package idle

import (
	"sync"
	"time"
)

// Controller owns a single re-armed timer. Every qualifying input event both
// dismisses the attract overlay (if shown) and re-arms the timer; while the
// controller is running the timer is never left unset.
type Controller struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	running bool
	attract bool

	onExpire func() // fired when inactivity elapses; raises the attract overlay
	onWake   func() // fired when input dismisses the attract overlay
}

// New creates a controller with the given inactivity timeout.
func New(timeout time.Duration, onExpire, onWake func()) *Controller {
	return &Controller{
		timeout:  timeout,
		onExpire: onExpire,
		onWake:   onWake,
	}
}

// Start arms the timer. Subsequent calls are no-ops until Stop.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.armLocked()
}

// Stop disarms the timer.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Touch records a user input event: it dismisses the attract overlay when
// shown and re-arms the timer.
func (c *Controller) Touch() {
	c.mu.Lock()
	wasAttract := c.attract
	c.attract = false
	if c.running {
		c.armLocked()
	}
	onWake := c.onWake
	c.mu.Unlock()

	if wasAttract && onWake != nil {
		onWake()
	}
}

// AttractActive reports whether the attract overlay is currently raised.
func (c *Controller) AttractActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attract
}

func (c *Controller) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.timeout, c.expire)
}

func (c *Controller) expire() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.attract = true
	// Re-arm so the timer is never left unset; expiring again with the
	// attract overlay already raised is harmless.
	c.armLocked()
	onExpire := c.onExpire
	c.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}
