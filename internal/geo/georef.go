package geo

import (
	"errors"

	"github.com/uninav/wayfinder/pkg/core"
	"github.com/wroge/wgs84"
)

// GEO REFERENCE
// Floor plans use a local pixel-like coordinate space. For telemetry and
// route-sharing exports we anchor that space to a real-world location:
// the building anchor is the plan origin in EPSG:4326, and metersPerUnit
// scales plan units to meters. Transforms go through EPSG:3857 so offsets
// can be applied in meters.

// ErrInvalidAnchor is returned when the referencer is constructed with a
// non-positive scale or out-of-range anchor coordinates.
var ErrInvalidAnchor = errors.New("invalid building anchor provided")

// Referencer converts floor-plan coordinates to WGS84.
type Referencer struct {
	anchorX3857   float64
	anchorY3857   float64
	metersPerUnit float64
}

// NewReferencer creates a Referencer from an EPSG:4326 anchor point and a
// plan-unit scale.
func NewReferencer(anchorLon, anchorLat, metersPerUnit float64) (*Referencer, error) {
	if metersPerUnit <= 0 {
		return nil, ErrInvalidAnchor
	}
	if anchorLon < -180 || anchorLon > 180 || anchorLat < -90 || anchorLat > 90 {
		return nil, ErrInvalidAnchor
	}

	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(anchorLon, anchorLat, 0)

	return &Referencer{
		anchorX3857:   x,
		anchorY3857:   y,
		metersPerUnit: metersPerUnit,
	}, nil
}

// ToWGS84 converts a floor-plan position to EPSG:4326 longitude/latitude.
// Plan Y grows downward (screen convention), so it is subtracted.
func (r *Referencer) ToWGS84(p core.Position2D) (lon, lat float64) {
	x := r.anchorX3857 + p.X*r.metersPerUnit
	y := r.anchorY3857 - p.Y*r.metersPerUnit

	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	lon, lat, _ = f(x, y, 0)
	return lon, lat
}
