// Package session holds the kiosk's displayed state: the current search, the
// computed route and its derived per-floor structure.
package session

import (
	"sync"

	"github.com/uninav/wayfinder/internal/route"
	"github.com/uninav/wayfinder/pkg/core"
)

// Context is the mutable display state for one kiosk surface. Derived data
// (runs, transitions) is recomputed whenever the route changes and discarded
// on reset.
type Context struct {
	mu sync.RWMutex

	query       string
	destination string
	currentRoute *core.Route
	runs        []route.FloorRun
	transitions route.TransitionSet

	floors       []core.Floor
	floorNumbers route.FloorNumbers
	rooms        []core.Room
	kiosk        *core.Kiosk
}

// NewContext creates an empty session.
func NewContext() *Context {
	return &Context{
		floorNumbers: route.FloorNumbers{},
	}
}

// SetFloors stores the floor list and rebuilds the floor-number lookup used
// for transition directions.
func (c *Context) SetFloors(floors []core.Floor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floors = floors
	c.floorNumbers = route.NumbersFromFloors(floors)
}

// Floors returns the stored floor list.
func (c *Context) Floors() []core.Floor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.floors
}

// FloorNumbers returns the floor-id to floor-number lookup.
func (c *Context) FloorNumbers() route.FloorNumbers {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.floorNumbers
}

// SetRooms stores the searchable room list.
func (c *Context) SetRooms(rooms []core.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = rooms
}

// Rooms returns the stored room list.
func (c *Context) Rooms() []core.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms
}

// SetKiosk stores this terminal's kiosk configuration.
func (c *Context) SetKiosk(k *core.Kiosk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kiosk = k
}

// Kiosk returns this terminal's kiosk configuration, or nil before setup.
func (c *Context) Kiosk() *core.Kiosk {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kiosk
}

// SetQuery records the current search input.
func (c *Context) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// SetRoute stores a new route with its derived runs and transitions.
func (c *Context) SetRoute(destination string, r core.Route, runs []route.FloorRun, transitions route.TransitionSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destination = destination
	c.currentRoute = &r
	c.runs = runs
	c.transitions = transitions
}

// Route returns the current route, or nil when none is displayed.
func (c *Context) Route() *core.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentRoute
}

// Runs returns the current route's floor runs.
func (c *Context) Runs() []route.FloorRun {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runs
}

// Transitions returns the current route's transition markers.
func (c *Context) Transitions() route.TransitionSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transitions
}

// Destination returns the current destination label.
func (c *Context) Destination() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.destination
}

// Query returns the current search input.
func (c *Context) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// Reset clears the search, destination and route. Floor and kiosk data stay:
// they describe the building, not the interaction.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = ""
	c.destination = ""
	c.currentRoute = nil
	c.runs = nil
	c.transitions = nil
}
