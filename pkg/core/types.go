// pkg/core/types.go
package core

// Position2D represents a point in a floor plan's local coordinate space.
type Position2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is an ordered sequence of floor-plan points.
type Polyline []Position2D

// Floor describes one building level served by the navigation API.
type Floor struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Number  int     `json:"number"`
	PlanURL string  `json:"plan_url"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Room is a searchable destination on a floor.
type Room struct {
	ID       string     `json:"id"`
	FloorID  string     `json:"floor_id"`
	Name     string     `json:"name"`
	Number   string     `json:"number"`
	Position Position2D `json:"position"`
}

// Waypoint is a node of the navigation graph on a floor.
type Waypoint struct {
	ID      string  `json:"id"`
	FloorID string  `json:"floor_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Type    string  `json:"type"`
	Label   string  `json:"label,omitempty"`
}

// Kiosk is a physical display terminal anchored to a waypoint.
type Kiosk struct {
	ID         string     `json:"id"`
	FloorID    string     `json:"floor_id"`
	Name       string     `json:"name"`
	WaypointID string     `json:"waypoint_id"`
	Position   Position2D `json:"position"`
}
