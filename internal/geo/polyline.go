package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/uninav/wayfinder/pkg/core"
)

// LineString converts a core.Polyline into a geom.LineString.
// Returns an empty LineString for fewer than 2 points.
func LineString(poly core.Polyline) geom.LineString {
	if len(poly) < 2 {
		return geom.LineString{}
	}
	flatCoords := make([]float64, 0, len(poly)*2)
	for _, p := range poly {
		flatCoords = append(flatCoords, p.X, p.Y)
	}
	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq)
}

// Length returns the total Euclidean length of the polyline.
// Returns 0 for fewer than 2 points.
func Length(poly core.Polyline) float64 {
	if len(poly) < 2 {
		return 0
	}
	return LineString(poly).Length()
}

// PointAt walks the polyline and returns the interpolated point at the given
// cumulative distance from the start. Distances past the total length clamp
// to the last point; zero-length segments are skipped so there is never a
// division by zero.
func PointAt(poly core.Polyline, distance float64) core.Position2D {
	if len(poly) == 0 {
		return core.Position2D{}
	}
	if distance <= 0 {
		return poly[0]
	}

	walked := 0.0
	for i := 0; i < len(poly)-1; i++ {
		a, b := poly[i], poly[i+1]
		segment := math.Hypot(b.X-a.X, b.Y-a.Y)
		if segment == 0 {
			continue
		}
		if walked+segment >= distance {
			t := (distance - walked) / segment
			return core.Position2D{
				X: a.X + (b.X-a.X)*t,
				Y: a.Y + (b.Y-a.Y)*t,
			}
		}
		walked += segment
	}
	return poly[len(poly)-1]
}
