package streaming

import (
	"encoding/json"

	"github.com/uninav/wayfinder/internal/route"
	"github.com/uninav/wayfinder/pkg/core"
)

// Message type constants for the display protocol.
const (
	TypeRoute   = "route"
	TypeFrame   = "frame"
	TypeAttract = "attract"
	TypeOffline = "offline"
	TypeNoRoute = "no_route"
	TypeReset   = "reset"
)

// Envelope wraps all messages sent to display front-ends.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RunInfo describes one floor run of the current route.
type RunInfo struct {
	Index   int             `json:"index"`
	FloorID string          `json:"floor_id"`
	Steps   []core.PathStep `json:"steps"`
	Length  float64         `json:"length"`
}

// RoutePayload announces a newly computed route with its derived structure.
type RoutePayload struct {
	Destination string                            `json:"destination"`
	Route       core.Route                        `json:"route"`
	Runs        []RunInfo                         `json:"runs"`
	Transitions map[string]route.FloorTransitions `json:"transitions"`
}

// RunFrame is the per-run slice of one animation frame.
type RunFrame struct {
	Index    int              `json:"index"`
	FloorID  string           `json:"floor_id"`
	State    string           `json:"state"`
	Progress float64          `json:"progress"`
	Length   float64          `json:"length"`
	Marker   *core.Position2D `json:"marker,omitempty"`
}

// FramePayload carries one tick of the reveal animation. Runs holds the
// visible slots only (at most two).
type FramePayload struct {
	ActiveRun int        `json:"active_run"`
	Animating bool       `json:"animating"`
	Runs      []RunFrame `json:"runs"`
}

// AttractPayload toggles the attract overlay.
type AttractPayload struct {
	Active            bool `json:"active"`
	RequestFullscreen bool `json:"request_fullscreen"`
}

// OfflinePayload notifies a connectivity change.
type OfflinePayload struct {
	Offline bool   `json:"offline"`
	Message string `json:"message,omitempty"`
}

// NoRoutePayload surfaces a named path-finding failure. It does not clear
// previously displayed state.
type NoRoutePayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: raw}, nil
}
