// internal/navapi/client.go
package navapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/uninav/wayfinder/pkg/core"
)

// Client handles communication with the external navigation API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new navigation API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the configured API base URL. Cache keys embed it so
// switching backends never serves cross-environment data.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PathRequest identifies a start (room, waypoint or kiosk) and an end room.
type PathRequest struct {
	FromRoomID     string `json:"from_room_id,omitempty"`
	FromWaypointID string `json:"from_waypoint_id,omitempty"`
	FromKioskID    string `json:"from_kiosk_id,omitempty"`
	ToRoomID       string `json:"to_room_id"`
}

// From returns a display label for the request's start location.
func (r PathRequest) From() string {
	switch {
	case r.FromRoomID != "":
		return r.FromRoomID
	case r.FromWaypointID != "":
		return r.FromWaypointID
	default:
		return r.FromKioskID
	}
}

// NoRouteError is returned when the API finds no path for a valid request.
type NoRouteError struct {
	From string
	To   string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route from %s to %s", e.From, e.To)
}

// apiError is the JSON error body returned by the navigation API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Healthcheck checks if the navigation API is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.get("/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// FindPath asks the API for a route. A valid request with no reachable path
// returns a *NoRouteError.
func (c *Client) FindPath(req PathRequest) (core.Route, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return core.Route{}, fmt.Errorf("failed to marshal path request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/path/find", bytes.NewReader(body))
	if err != nil {
		return core.Route{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.Route{}, fmt.Errorf("path request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Code == "no_route" {
			return core.Route{}, &NoRouteError{From: req.From(), To: req.ToRoomID}
		}
		return core.Route{}, fmt.Errorf("path request returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return core.Route{}, fmt.Errorf("path request returned status %d", resp.StatusCode)
	}

	var route core.Route
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return core.Route{}, fmt.Errorf("failed to decode path response: %w", err)
	}
	return route, nil
}

// GetFloors fetches all floors.
func (c *Client) GetFloors() ([]core.Floor, error) {
	var floors []core.Floor
	if err := c.getJSON("/api/v1/floors", &floors); err != nil {
		return nil, fmt.Errorf("fetching floors: %w", err)
	}
	return floors, nil
}

// GetRooms fetches all rooms.
func (c *Client) GetRooms() ([]core.Room, error) {
	var rooms []core.Room
	if err := c.getJSON("/api/v1/rooms", &rooms); err != nil {
		return nil, fmt.Errorf("fetching rooms: %w", err)
	}
	return rooms, nil
}

// GetKiosks fetches all kiosks.
func (c *Client) GetKiosks() ([]core.Kiosk, error) {
	var kiosks []core.Kiosk
	if err := c.getJSON("/api/v1/kiosks", &kiosks); err != nil {
		return nil, fmt.Errorf("fetching kiosks: %w", err)
	}
	return kiosks, nil
}

// GetKiosk fetches one kiosk's configuration.
func (c *Client) GetKiosk(id string) (core.Kiosk, error) {
	var kiosk core.Kiosk
	if err := c.getJSON("/api/v1/kiosks/"+id, &kiosk); err != nil {
		return core.Kiosk{}, fmt.Errorf("fetching kiosk %s: %w", id, err)
	}
	return kiosk, nil
}

// GetWaypointsByFloor fetches the navigation graph nodes for one floor.
func (c *Client) GetWaypointsByFloor(floorID string) ([]core.Waypoint, error) {
	var waypoints []core.Waypoint
	if err := c.getJSON("/api/v1/floors/"+floorID+"/waypoints", &waypoints); err != nil {
		return nil, fmt.Errorf("fetching waypoints for floor %s: %w", floorID, err)
	}
	return waypoints, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) get(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	return c.httpClient.Do(req)
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.get(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
