// Package route derives per-floor structure from a computed path: contiguous
// same-floor runs and the stair/elevator transition markers between them.
package route

import (
	"github.com/uninav/wayfinder/pkg/core"
)

// FloorRun is a maximal contiguous subsequence of a path confined to one
// floor. Runs are derived, never persisted: concatenating all runs' steps in
// order reproduces the original path exactly, and no two adjacent runs share
// a floor.
type FloorRun struct {
	FloorID string
	Steps   []core.PathStep
}

// Polyline extracts the run's coordinates in walking order.
func (r FloorRun) Polyline() core.Polyline {
	poly := make(core.Polyline, len(r.Steps))
	for i, s := range r.Steps {
		poly[i] = s.Position()
	}
	return poly
}

// SplitRuns groups an ordered path into contiguous same-floor runs in a
// single linear pass. An empty path yields an empty slice; a single-floor
// path yields exactly one run.
func SplitRuns(steps []core.PathStep) []FloorRun {
	if len(steps) == 0 {
		return nil
	}

	runs := []FloorRun{{FloorID: steps[0].FloorID}}
	for _, s := range steps {
		last := &runs[len(runs)-1]
		if s.FloorID != last.FloorID {
			runs = append(runs, FloorRun{FloorID: s.FloorID})
			last = &runs[len(runs)-1]
		}
		last.Steps = append(last.Steps, s)
	}
	return runs
}
