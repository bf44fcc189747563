package animation

import (
	"sync"
	"sync/atomic"
	"time"
)

// Frame pacing. Active runs target ~60 fps; when only static runs remain the
// loop throttles to ~24 fps to avoid redundant redraws.
const (
	ActiveFrameInterval = time.Second / 60
	IdleFrameInterval   = time.Second / 24
)

// Clock abstracts wall time so the loop can be driven without real delays in
// tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Presenter receives one callback per frame after the scheduler has ticked.
type Presenter func(now time.Time, animating bool)

// Loop is the self-rescheduling frame loop for one route. It is single-use:
// a new route gets a fresh Loop, and Stop must run before the replacement
// starts so two loops never draw concurrently.
type Loop struct {
	sched   *Scheduler
	clock   Clock
	present Presenter

	activeInterval time.Duration
	idleInterval   time.Duration

	lastFrame time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	started   atomic.Bool
}

// NewLoop creates a frame loop over the given scheduler. A nil clock uses
// the system clock.
func NewLoop(sched *Scheduler, clock Clock, present Presenter) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{
		sched:          sched,
		clock:          clock,
		present:        present,
		activeInterval: ActiveFrameInterval,
		idleInterval:   IdleFrameInterval,
		stopChan:       make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start begins the frame loop. Subsequent calls are no-ops.
func (l *Loop) Start() {
	if l.started.CompareAndSwap(false, true) {
		l.lastFrame = l.clock.Now()
		go l.run()
	}
}

// Stop cancels the loop and waits for the in-flight frame to finish. Safe to
// call multiple times and before Start.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	if l.started.Load() {
		<-l.done
	}
}

// Running reports whether the loop has started and not yet stopped.
func (l *Loop) Running() bool {
	if !l.started.Load() {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

func (l *Loop) run() {
	defer close(l.done)

	interval := l.activeInterval
	for {
		select {
		case <-l.stopChan:
			return
		case <-l.clock.After(interval):
		}

		now := l.clock.Now()
		delta := now.Sub(l.lastFrame)
		l.lastFrame = now

		animating := l.sched.Tick(delta)
		if l.present != nil {
			l.present(now, animating)
		}

		if animating {
			interval = l.activeInterval
		} else {
			interval = l.idleInterval
		}
	}
}
