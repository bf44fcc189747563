package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uninav/wayfinder/pkg/core"
)

func TestLength_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Length(nil))
	assert.Equal(t, 0.0, Length(core.Polyline{}))
}

func TestLength_SinglePoint(t *testing.T) {
	poly := core.Polyline{{X: 5, Y: 5}}
	assert.Equal(t, 0.0, Length(poly))
}

func TestLength_Segments(t *testing.T) {
	// Right angle: 3 across, 4 up.
	poly := core.Polyline{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}}
	assert.InDelta(t, 7.0, Length(poly), 1e-9)
}

func TestPointAt_Empty(t *testing.T) {
	assert.Equal(t, core.Position2D{}, PointAt(nil, 10))
}

func TestPointAt_ZeroDistance(t *testing.T) {
	poly := core.Polyline{{X: 2, Y: 3}, {X: 10, Y: 3}}
	assert.Equal(t, core.Position2D{X: 2, Y: 3}, PointAt(poly, 0))
	assert.Equal(t, core.Position2D{X: 2, Y: 3}, PointAt(poly, -5))
}

func TestPointAt_Interpolates(t *testing.T) {
	poly := core.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}}
	p := PointAt(poly, 4)
	assert.InDelta(t, 4.0, p.X, 1e-9)
	assert.InDelta(t, 0.0, p.Y, 1e-9)
}

func TestPointAt_CrossesSegmentBoundary(t *testing.T) {
	poly := core.Polyline{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}}
	p := PointAt(poly, 5) // 3 along the first segment, 2 up the second
	assert.InDelta(t, 3.0, p.X, 1e-9)
	assert.InDelta(t, 2.0, p.Y, 1e-9)
}

func TestPointAt_ClampsPastEnd(t *testing.T) {
	poly := core.Polyline{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}}
	assert.Equal(t, core.Position2D{X: 3, Y: 4}, PointAt(poly, 100))
}

func TestPointAt_SkipsZeroLengthSegments(t *testing.T) {
	poly := core.Polyline{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0}}
	p := PointAt(poly, 5)
	assert.InDelta(t, 5.0, p.X, 1e-9)
}

func TestPointAt_FullLengthIsLastPoint(t *testing.T) {
	poly := core.Polyline{{X: 1, Y: 1}, {X: 4, Y: 5}, {X: 10, Y: 5}}
	total := Length(poly)
	p := PointAt(poly, total)
	assert.InDelta(t, 10.0, p.X, 1e-9)
	assert.InDelta(t, 5.0, p.Y, 1e-9)
}
