package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninav/wayfinder/pkg/core"
)

func TestNumbersFromFloors(t *testing.T) {
	floors := []core.Floor{
		{ID: "f10", Number: 1},
		{ID: "f11", Number: 2},
	}
	numbers := NumbersFromFloors(floors)
	assert.Equal(t, FloorNumbers{"f10": 1, "f11": 2}, numbers)
}

func TestDeriveTransitions_NoBoundary(t *testing.T) {
	steps := []core.PathStep{
		step("f1", 0, 0),
		step("f1", 5, 0),
	}
	set := DeriveTransitions(steps, FloorNumbers{"f1": 1})
	assert.Empty(t, set)
}

func TestDeriveTransitions_UpByFloorNumber(t *testing.T) {
	steps := []core.PathStep{
		step("f10", 0, 0),
		step("f10", 5, 0),
		step("f11", 5, 0),
		step("f11", 5, 5),
	}
	set := DeriveTransitions(steps, FloorNumbers{"f10": 1, "f11": 2})

	require.Contains(t, set, "f10")
	require.Contains(t, set, "f11")

	exit := set["f10"].Exit
	require.Len(t, exit, 1)
	assert.Equal(t, DirectionUp, exit[0].Direction)
	assert.Equal(t, core.Position2D{X: 5, Y: 0}, exit[0].Position)

	entry := set["f11"].Entry
	require.Len(t, entry, 1)
	assert.Equal(t, DirectionUp, entry[0].Direction)
	assert.Equal(t, core.Position2D{X: 5, Y: 0}, entry[0].Position)
}

func TestDeriveTransitions_DownByFloorNumber(t *testing.T) {
	steps := []core.PathStep{
		step("f11", 0, 0),
		step("f10", 0, 0),
	}
	set := DeriveTransitions(steps, FloorNumbers{"f10": 1, "f11": 2})

	assert.Equal(t, DirectionDown, set["f11"].Exit[0].Direction)
	assert.Equal(t, DirectionDown, set["f10"].Entry[0].Direction)
}

func TestDeriveTransitions_UnknownFloorsFallBackToIDOrder(t *testing.T) {
	steps := []core.PathStep{
		step("floor-a", 0, 0),
		step("floor-b", 0, 0),
	}
	set := DeriveTransitions(steps, FloorNumbers{})

	assert.Equal(t, DirectionUp, set["floor-a"].Exit[0].Direction)

	reversed := DeriveTransitions([]core.PathStep{
		step("floor-b", 0, 0),
		step("floor-a", 0, 0),
	}, FloorNumbers{})
	assert.Equal(t, DirectionDown, reversed["floor-b"].Exit[0].Direction)
}

func TestDeriveTransitions_RevisitedFloorAccumulates(t *testing.T) {
	// f1 -> f2 -> f1: the middle floor collects one entry and one exit,
	// the first floor one exit and one entry. Nothing is deduplicated.
	steps := []core.PathStep{
		step("f1", 0, 0),
		step("f2", 0, 0),
		step("f2", 5, 0),
		step("f1", 5, 0),
	}
	set := DeriveTransitions(steps, FloorNumbers{"f1": 1, "f2": 2})

	assert.Len(t, set["f1"].Exit, 1)
	assert.Len(t, set["f1"].Entry, 1)
	assert.Len(t, set["f2"].Entry, 1)
	assert.Len(t, set["f2"].Exit, 1)

	assert.Equal(t, DirectionUp, set["f1"].Exit[0].Direction)
	assert.Equal(t, DirectionDown, set["f1"].Entry[0].Direction)
}

func TestDeriveTransitions_MarkerPositions(t *testing.T) {
	steps := []core.PathStep{
		step("f1", 1, 2),
		step("f2", 3, 4),
	}
	set := DeriveTransitions(steps, FloorNumbers{"f1": 1, "f2": 2})

	// Exit anchors at the departing step, entry at the arriving one.
	assert.Equal(t, core.Position2D{X: 1, Y: 2}, set["f1"].Exit[0].Position)
	assert.Equal(t, core.Position2D{X: 3, Y: 4}, set["f2"].Entry[0].Position)
}
