package idle

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestController_ExpiresAfterTimeout(t *testing.T) {
	var expired atomic.Int32
	c := New(30*time.Millisecond, func() { expired.Add(1) }, nil)
	c.Start()
	defer c.Stop()

	waitFor(t, func() bool { return expired.Load() >= 1 })
	assert.True(t, c.AttractActive())
}

func TestController_TouchReArmsTimer(t *testing.T) {
	var expired atomic.Int32
	c := New(60*time.Millisecond, func() { expired.Add(1) }, nil)
	c.Start()
	defer c.Stop()

	// Keep touching faster than the timeout; the timer must never fire.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		c.Touch()
	}
	assert.Equal(t, int32(0), expired.Load())
}

func TestController_TouchDismissesAttract(t *testing.T) {
	var woke atomic.Int32
	c := New(20*time.Millisecond, nil, func() { woke.Add(1) })
	c.Start()
	defer c.Stop()

	waitFor(t, c.AttractActive)

	c.Touch()
	assert.False(t, c.AttractActive())
	assert.Equal(t, int32(1), woke.Load())

	// Touching while already awake fires no wake callback.
	c.Touch()
	assert.Equal(t, int32(1), woke.Load())
}

func TestController_StopDisarms(t *testing.T) {
	var expired atomic.Int32
	c := New(20*time.Millisecond, func() { expired.Add(1) }, nil)
	c.Start()
	c.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), expired.Load())
}

func TestController_ReArmsAfterExpiry(t *testing.T) {
	var expired atomic.Int32
	c := New(20*time.Millisecond, func() { expired.Add(1) }, nil)
	c.Start()
	defer c.Stop()

	// The timer re-arms on expiry, so it keeps firing while idle.
	waitFor(t, func() bool { return expired.Load() >= 2 })
}
