// pkg/core/route.go
package core

// PathStep is one waypoint along a computed route as returned by the
// navigation API. Steps are immutable once received; slice order is the
// walking order.
type PathStep struct {
	WaypointID  string  `json:"waypoint_id"`
	FloorID     string  `json:"floor_id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Type        string  `json:"type"`
	Label       string  `json:"label,omitempty"`
	Instruction string  `json:"instruction,omitempty"`
}

// Position returns the step's floor-plan coordinates.
func (s PathStep) Position() Position2D {
	return Position2D{X: s.X, Y: s.Y}
}

// Route is a computed path between two locations.
type Route struct {
	Path                 []PathStep `json:"path"`
	TotalDistance        float64    `json:"total_distance"`
	FloorChanges         int        `json:"floor_changes"`
	EstimatedTimeMinutes float64    `json:"estimated_time_minutes"`
}

// Polyline extracts the route's coordinates in walking order.
func (r Route) Polyline() Polyline {
	poly := make(Polyline, len(r.Path))
	for i, s := range r.Path {
		poly[i] = s.Position()
	}
	return poly
}
