// Package animation drives the progressive path reveal: a per-run state
// machine advancing through floor runs as each finishes animating.
package animation

import (
	"sync"
	"time"

	"github.com/uninav/wayfinder/internal/geo"
	"github.com/uninav/wayfinder/internal/route"
	"github.com/uninav/wayfinder/pkg/core"
)

// State is the animation state of one floor run, assigned by comparing the
// run's index to the active run index.
type State int

const (
	StatePending State = iota
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Scheduler owns the reveal bookkeeping for one route: the active run index,
// per-run reveal progress, and the set of completed runs. All methods are
// safe for concurrent use; state only advances through Tick and CompleteRun.
type Scheduler struct {
	mu        sync.Mutex
	runs      []route.FloorRun
	polylines []core.Polyline
	lengths   []float64
	progress  []float64
	active    int
	completed map[int]struct{}
	speed     float64 // reveal speed in plan units per second
}

// NewScheduler creates a Scheduler revealing paths at the given speed.
func NewScheduler(speed float64) *Scheduler {
	return &Scheduler{
		completed: make(map[int]struct{}),
		speed:     speed,
	}
}

// SetRuns loads a new route's floor runs, resetting the active run index to
// zero and clearing all completion tracking. Degenerate runs (fewer than 2
// steps) at the front complete immediately so the reveal never stalls on
// them.
func (s *Scheduler) SetRuns(runs []route.FloorRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = runs
	s.polylines = make([]core.Polyline, len(runs))
	s.lengths = make([]float64, len(runs))
	s.progress = make([]float64, len(runs))
	for i, r := range runs {
		s.polylines[i] = r.Polyline()
		s.lengths[i] = geo.Length(s.polylines[i])
	}
	s.active = 0
	s.completed = make(map[int]struct{})

	s.completeDegenerateLocked()
}

// completeDegenerateLocked finishes runs that cannot animate a moving marker.
func (s *Scheduler) completeDegenerateLocked() {
	for s.active < len(s.runs) {
		if _, done := s.completed[s.active]; done {
			break
		}
		if len(s.runs[s.active].Steps) >= 2 {
			break
		}
		s.completeLocked(s.active)
	}
}

// Tick advances the active run's reveal by delta at the configured speed.
// It returns true while a run is still animating.
func (s *Scheduler) Tick(delta time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active >= len(s.runs) {
		return false
	}
	if _, done := s.completed[s.active]; done {
		return false
	}

	i := s.active
	s.progress[i] += s.speed * delta.Seconds()
	if s.progress[i] >= s.lengths[i] {
		s.progress[i] = s.lengths[i]
		s.completeLocked(i)
		s.completeDegenerateLocked()
	}

	if s.active >= len(s.runs) {
		return false
	}
	_, done := s.completed[s.active]
	return !done
}

// CompleteRun marks the run at index i complete. Completion is idempotent;
// the active run index only advances when i is still the active run, so a
// stale signal from a superseded run is ignored.
func (s *Scheduler) CompleteRun(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeLocked(i)
	s.completeDegenerateLocked()
}

func (s *Scheduler) completeLocked(i int) {
	if i < 0 || i >= len(s.runs) {
		return
	}
	if _, done := s.completed[i]; done {
		return
	}
	s.completed[i] = struct{}{}
	s.progress[i] = s.lengths[i]

	// Advance only if this run is still the active one: a completion from a
	// run a newer path has superseded must not move the pointer.
	if i == s.active && s.active < len(s.runs)-1 {
		s.active++
	}
}

// RunCount returns the number of loaded runs.
func (s *Scheduler) RunCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// ActiveRun returns the current active run index.
func (s *Scheduler) ActiveRun() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// RunState reports the state of the run at index i.
func (s *Scheduler) RunState(i int) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(i)
}

func (s *Scheduler) stateLocked(i int) State {
	if _, done := s.completed[i]; done {
		return StateCompleted
	}
	if i == s.active {
		return StateActive
	}
	return StatePending
}

// Progress returns the revealed distance for run i, pinned to 0 for pending
// runs and to the full run length for completed ones.
func (s *Scheduler) Progress(i int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.runs) {
		return 0
	}
	switch s.stateLocked(i) {
	case StatePending:
		return 0
	case StateCompleted:
		return s.lengths[i]
	default:
		return s.progress[i]
	}
}

// RunLength returns the total polyline length of run i.
func (s *Scheduler) RunLength(i int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.runs) {
		return 0
	}
	return s.lengths[i]
}

// MarkerPosition returns the reveal head for run i. Only an actively
// animating run has a moving marker.
func (s *Scheduler) MarkerPosition(i int) (core.Position2D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.runs) {
		return core.Position2D{}, false
	}
	if s.stateLocked(i) != StateActive || len(s.polylines[i]) < 2 {
		return core.Position2D{}, false
	}
	return geo.PointAt(s.polylines[i], s.progress[i]), true
}

// VisibleRuns returns the run indexes presented concurrently: all runs when
// one or two exist, otherwise the active run plus the next pending one.
func (s *Scheduler) VisibleRuns() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.runs)
	switch {
	case n == 0:
		return nil
	case n <= 2:
		visible := make([]int, n)
		for i := range visible {
			visible[i] = i
		}
		return visible
	case s.active < n-1:
		return []int{s.active, s.active + 1}
	default:
		return []int{s.active}
	}
}

// Done returns true once every run has completed.
func (s *Scheduler) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed) == len(s.runs)
}
