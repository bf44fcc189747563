package route

import (
	"strings"

	"github.com/uninav/wayfinder/pkg/core"
)

// Direction labels which way a floor transition goes.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// TransitionMarker anchors a stair/elevator indicator where a route crosses
// between floors.
type TransitionMarker struct {
	Position  core.Position2D `json:"position"`
	Direction Direction       `json:"direction"`
}

// FloorTransitions collects the markers touching one floor. A floor the path
// revisits accumulates multiple entries; lists are never deduplicated.
type FloorTransitions struct {
	Entry []TransitionMarker `json:"entry"`
	Exit  []TransitionMarker `json:"exit"`
}

// TransitionSet maps floor IDs to their entry/exit markers.
type TransitionSet map[string]FloorTransitions

// FloorNumbers resolves floor IDs to their ordinal numbers for direction
// comparison.
type FloorNumbers map[string]int

// NumbersFromFloors builds a lookup from the API's floor list.
func NumbersFromFloors(floors []core.Floor) FloorNumbers {
	numbers := make(FloorNumbers, len(floors))
	for _, f := range floors {
		numbers[f.ID] = f.Number
	}
	return numbers
}

// direction compares two floors. When both floors are known, their numbers
// decide; otherwise the raw IDs are compared lexically. The ID fallback
// assumes IDs sort in floor order, which is not guaranteed; see DESIGN.md.
func (n FloorNumbers) direction(currentID, nextID string) Direction {
	currentNum, currentOK := n[currentID]
	nextNum, nextOK := n[nextID]
	if currentOK && nextOK {
		if nextNum > currentNum {
			return DirectionUp
		}
		return DirectionDown
	}
	if strings.Compare(nextID, currentID) > 0 {
		return DirectionUp
	}
	return DirectionDown
}

// DeriveTransitions scans adjacent step pairs and produces directional
// markers for every floor boundary: an exit marker at the last step on the
// departing floor and an entry marker at the first step on the arriving one.
func DeriveTransitions(steps []core.PathStep, numbers FloorNumbers) TransitionSet {
	set := make(TransitionSet)

	for i := 0; i < len(steps)-1; i++ {
		current, next := steps[i], steps[i+1]
		if current.FloorID == next.FloorID {
			continue
		}

		dir := numbers.direction(current.FloorID, next.FloorID)

		exit := set[current.FloorID]
		exit.Exit = append(exit.Exit, TransitionMarker{Position: current.Position(), Direction: dir})
		set[current.FloorID] = exit

		entry := set[next.FloorID]
		entry.Entry = append(entry.Entry, TransitionMarker{Position: next.Position(), Direction: dir})
		set[next.FloorID] = entry
	}
	return set
}
