package display

import (
	"github.com/uninav/wayfinder/internal/animation"
	"github.com/uninav/wayfinder/internal/geo"
	"github.com/uninav/wayfinder/internal/route"
	"github.com/uninav/wayfinder/pkg/core"
	"github.com/uninav/wayfinder/pkg/streaming"
)

// BuildRoutePayload assembles the route announcement sent once per search
// result.
func BuildRoutePayload(destination string, r core.Route, runs []route.FloorRun, transitions route.TransitionSet) streaming.RoutePayload {
	infos := make([]streaming.RunInfo, len(runs))
	for i, run := range runs {
		infos[i] = streaming.RunInfo{
			Index:   i,
			FloorID: run.FloorID,
			Steps:   run.Steps,
			Length:  geo.Length(run.Polyline()),
		}
	}
	return streaming.RoutePayload{
		Destination: destination,
		Route:       r,
		Runs:        infos,
		Transitions: transitions,
	}
}

// BuildFramePayload snapshots the scheduler into one frame, covering only
// the visible run slots.
func BuildFramePayload(sched *animation.Scheduler, runs []route.FloorRun, animating bool) streaming.FramePayload {
	visible := sched.VisibleRuns()
	frames := make([]streaming.RunFrame, 0, len(visible))
	for _, i := range visible {
		rf := streaming.RunFrame{
			Index:    i,
			State:    sched.RunState(i).String(),
			Progress: sched.Progress(i),
			Length:   sched.RunLength(i),
		}
		if i < len(runs) {
			rf.FloorID = runs[i].FloorID
		}
		if marker, ok := sched.MarkerPosition(i); ok {
			m := marker
			rf.Marker = &m
		}
		frames = append(frames, rf)
	}
	return streaming.FramePayload{
		ActiveRun: sched.ActiveRun(),
		Animating: animating,
		Runs:      frames,
	}
}
