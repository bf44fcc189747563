package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Debug(msg string, keysAndValues ...any) {}
func (testLogger) Info(msg string, keysAndValues ...any)  {}
func (testLogger) Error(msg string, keysAndValues ...any) {}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d, err := New(testLogger{})
	require.NoError(t, err)
	return d
}

func TestDispatcher_Dispatch(t *testing.T) {
	d := newTestDispatcher(t)

	d.Register(":SEARCH:", func(e Event) (any, error) {
		return e.Args[0], nil
	})

	result, err := d.Dispatch(Event{Command: ":SEARCH:", Args: []string{"r42"}})
	require.NoError(t, err)
	assert.Equal(t, "r42", result)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":NOPE:"})
	assert.Error(t, err)
}

func TestDispatcher_HasHandler(t *testing.T) {
	d := newTestDispatcher(t)
	d.Register(":TOUCH:", func(Event) (any, error) { return nil, nil })

	assert.True(t, d.HasHandler(":TOUCH:"))
	assert.False(t, d.HasHandler(":RESET:"))
}

func TestDispatcher_Buffered(t *testing.T) {
	d := newTestDispatcher(t)

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 10)

	d.Register(":TOUCH:", func(e Event) (any, error) {
		mu.Lock()
		seen = append(seen, e.Args[0])
		mu.Unlock()
		done <- struct{}{}
		return nil, nil
	}, Buffered(10))

	for i, arg := range []string{"a", "b", "c"} {
		result, err := d.Dispatch(Event{Command: ":TOUCH:", Args: []string{arg}, Timestamp: time.Now()})
		require.NoError(t, err, "event %d", i)
		assert.Equal(t, "queued", result)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("buffered handler did not run")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d := newTestDispatcher(t)

	release := make(chan struct{})
	d.Register(":SLOW:", func(Event) (any, error) {
		<-release
		return nil, nil
	}, Buffered(1))

	// First event occupies the worker, second fills the queue, third drops.
	_, err := d.Dispatch(Event{Command: ":SLOW:"})
	require.NoError(t, err)

	// Give the worker a moment to pull the first event off the queue.
	time.Sleep(50 * time.Millisecond)

	_, err = d.Dispatch(Event{Command: ":SLOW:"})
	require.NoError(t, err)

	_, err = d.Dispatch(Event{Command: ":SLOW:"})
	assert.Error(t, err)

	close(release)
}

func TestDispatcher_Logged(t *testing.T) {
	d := newTestDispatcher(t)

	d.Register(":RESET:", func(Event) (any, error) {
		return "ok", nil
	}, Logged())

	result, err := d.Dispatch(Event{Command: ":RESET:"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}
