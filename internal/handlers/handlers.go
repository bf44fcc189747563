// Package handlers glues the kiosk subsystems together: cached navigation
// API fetches, search handling, the animation lifecycle and the idle/attract
// cycle. Handlers are registered on the command dispatcher.
package handlers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uninav/wayfinder/internal/animation"
	"github.com/uninav/wayfinder/internal/cache"
	"github.com/uninav/wayfinder/internal/dispatcher"
	"github.com/uninav/wayfinder/internal/display"
	"github.com/uninav/wayfinder/internal/idle"
	"github.com/uninav/wayfinder/internal/influx"
	"github.com/uninav/wayfinder/internal/logging"
	"github.com/uninav/wayfinder/internal/navapi"
	"github.com/uninav/wayfinder/internal/route"
	"github.com/uninav/wayfinder/internal/session"
	"github.com/uninav/wayfinder/pkg/core"
	"github.com/uninav/wayfinder/pkg/streaming"
)

// Logical cache resource names. Keys derive from these plus the API base URL.
const (
	ResourceFloors      = "floors"
	ResourceRooms       = "rooms"
	ResourceKioskPrefix = "kiosk:"
	ResourceFloorPrefix = "waypoints:"
)

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Client     *navapi.Client
	Cache      *cache.ResponseCache
	Offline    *cache.OfflineTracker
	LogManager *logging.SlogManager
	Session    *session.Context
	Surface    display.Surface
	Telemetry  *influx.Manager // optional
	Clock      animation.Clock // nil uses the system clock

	KioskID           string
	RevealSpeed       float64
	RequestFullscreen bool
}

// Service processes kiosk control commands.
type Service struct {
	deps  Dependencies
	sched *animation.Scheduler

	mu   sync.Mutex
	loop *animation.Loop
	idle *idle.Controller
}

// NewService creates a new handler service.
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:  deps,
		sched: animation.NewScheduler(deps.RevealSpeed),
	}
}

// SetIdleController attaches the idle controller once constructed. The
// controller's callbacks point back at this service, so wiring happens after
// both exist.
func (s *Service) SetIdleController(c *idle.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idle = c
}

// Scheduler exposes the animation scheduler for status reporting.
func (s *Service) Scheduler() *animation.Scheduler {
	return s.sched
}

// RegisterHandlers registers all command handlers with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Searches hit the navigation API - sync so the caller sees failures
	d.Register(":SEARCH:", s.handleSearch, dispatcher.Logged())

	// Touch events arrive at input rate - buffered
	d.Register(":TOUCH:", s.handleTouch, dispatcher.Buffered(100))

	d.Register(":FLOOR:SELECT:", s.handleFloorSelect, dispatcher.Logged())
	d.Register(":RESET:", s.handleReset, dispatcher.Logged())
	d.Register(":REFRESH:", s.handleRefresh, dispatcher.Logged())
}

// fetchCached runs fetch, writing the result through to the cache on success
// and falling back to a fresh cache entry on failure. The boolean reports
// whether the value came from cache.
func fetchCached[T any](s *Service, logical string, fetch func() (T, error)) (T, bool, error) {
	logger := s.deps.LogManager.Logger()
	key := cache.Key(s.deps.Client.BaseURL(), logical)

	v, err := fetch()
	if err == nil {
		if writeErr := s.deps.Cache.Write(key, v); writeErr != nil {
			logger.Error("Failed to cache response", "resource", logical, "error", writeErr)
		}
		if s.deps.Offline.MarkOnline() {
			s.presentOffline(false, "")
		}
		return v, false, nil
	}

	logger.Warn("Fetch failed, trying cache", "resource", logical, "error", err)

	var cached T
	if s.deps.Cache.Read(key, &cached) {
		if s.deps.Offline.MarkOffline() {
			s.presentOffline(true, "Showing saved data, live updates unavailable")
		}
		if s.deps.Telemetry != nil {
			s.deps.Telemetry.RecordCacheFallback(logical)
		}
		return cached, true, nil
	}

	var zero T
	return zero, false, fmt.Errorf("no data for %s: %w", logical, err)
}

// FetchFloors returns the floor list, from the API or cache, and refreshes
// the session's floor-number lookup.
func (s *Service) FetchFloors() ([]core.Floor, error) {
	floors, _, err := fetchCached(s, ResourceFloors, s.deps.Client.GetFloors)
	if err != nil {
		return nil, err
	}
	s.deps.Session.SetFloors(floors)
	return floors, nil
}

// FetchRooms returns the room list, from the API or cache.
func (s *Service) FetchRooms() ([]core.Room, error) {
	rooms, _, err := fetchCached(s, ResourceRooms, s.deps.Client.GetRooms)
	if err != nil {
		return nil, err
	}
	s.deps.Session.SetRooms(rooms)
	return rooms, nil
}

// FetchKioskConfig returns this terminal's kiosk record, from the API or
// cache.
func (s *Service) FetchKioskConfig(id string) (core.Kiosk, error) {
	kiosk, _, err := fetchCached(s, ResourceKioskPrefix+id, func() (core.Kiosk, error) {
		return s.deps.Client.GetKiosk(id)
	})
	if err != nil {
		return core.Kiosk{}, err
	}
	s.deps.Session.SetKiosk(&kiosk)
	return kiosk, nil
}

// FetchWaypoints returns one floor's waypoints, from the API or cache.
func (s *Service) FetchWaypoints(floorID string) ([]core.Waypoint, error) {
	waypoints, _, err := fetchCached(s, ResourceFloorPrefix+floorID, func() ([]core.Waypoint, error) {
		return s.deps.Client.GetWaypointsByFloor(floorID)
	})
	return waypoints, err
}

// Bootstrap loads building data at startup and warms the per-floor waypoint
// cache. A kiosk with no reachable API and no cache starts in the degraded
// "no data" state; search stays disabled until a refresh succeeds.
func (s *Service) Bootstrap() error {
	logger := s.deps.LogManager.Logger()

	floors, err := s.FetchFloors()
	if err != nil {
		return fmt.Errorf("bootstrap floors: %w", err)
	}
	if _, err := s.FetchRooms(); err != nil {
		return fmt.Errorf("bootstrap rooms: %w", err)
	}
	if s.deps.KioskID != "" {
		if _, err := s.FetchKioskConfig(s.deps.KioskID); err != nil {
			logger.Warn("Kiosk config unavailable", "kiosk", s.deps.KioskID, "error", err)
		}
	}
	for _, f := range floors {
		if _, err := s.FetchWaypoints(f.ID); err != nil {
			logger.Warn("Waypoints unavailable", "floor", f.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) handleSearch(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 || e.Args[0] == "" {
		return nil, fmt.Errorf("search requires a destination room id")
	}
	dest := e.Args[0]

	// A search is also user input: it dismisses attract and re-arms idle.
	s.touchIdle()
	s.deps.Session.SetQuery(dest)

	req := navapi.PathRequest{ToRoomID: dest}
	if k := s.deps.Session.Kiosk(); k != nil {
		req.FromKioskID = k.ID
	} else {
		req.FromKioskID = s.deps.KioskID
	}

	start := time.Now()
	rt, err := s.deps.Client.FindPath(req)
	elapsed := time.Since(start)

	var noRoute *navapi.NoRouteError
	if errors.As(err, &noRoute) {
		// Named failure: tell the display, keep whatever route is shown.
		if s.deps.Telemetry != nil {
			s.deps.Telemetry.RecordSearch(dest, false, elapsed)
		}
		s.presentEnvelope(streaming.TypeNoRoute, streaming.NoRoutePayload{
			From:    noRoute.From,
			To:      noRoute.To,
			Message: noRoute.Error(),
		})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("path search failed: %w", err)
	}

	if s.deps.Telemetry != nil {
		s.deps.Telemetry.RecordSearch(dest, true, elapsed)
		s.deps.Telemetry.RecordRoute(rt)
	}

	s.ShowRoute(dest, rt)
	return "ok", nil
}

// ShowRoute replaces the displayed route: it cancels any running animation
// loop, derives the new route's floor structure, and starts a fresh loop.
func (s *Service) ShowRoute(destination string, rt core.Route) {
	runs := route.SplitRuns(rt.Path)
	transitions := route.DeriveTransitions(rt.Path, s.deps.Session.FloorNumbers())
	s.deps.Session.SetRoute(destination, rt, runs, transitions)

	s.stopLoop()
	s.sched.SetRuns(runs)

	s.presentEnvelope(streaming.TypeRoute, display.BuildRoutePayload(destination, rt, runs, transitions))

	present := func(now time.Time, animating bool) {
		s.presentEnvelope(streaming.TypeFrame, display.BuildFramePayload(s.sched, runs, animating))
	}

	s.mu.Lock()
	s.loop = animation.NewLoop(s.sched, s.deps.Clock, present)
	s.loop.Start()
	s.mu.Unlock()
}

// handleFloorSelect serves manual floor browsing: it returns the selected
// floor's waypoints so the front-end can render the plan overlay.
func (s *Service) handleFloorSelect(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 || e.Args[0] == "" {
		return nil, fmt.Errorf("floor select requires a floor id")
	}
	floorID := e.Args[0]
	s.touchIdle()

	known := false
	for _, f := range s.deps.Session.Floors() {
		if f.ID == floorID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown floor: %s", floorID)
	}
	return s.FetchWaypoints(floorID)
}

func (s *Service) handleTouch(e dispatcher.Event) (any, error) {
	s.touchIdle()
	return nil, nil
}

func (s *Service) handleReset(e dispatcher.Event) (any, error) {
	s.Reset()
	return "ok", nil
}

func (s *Service) handleRefresh(e dispatcher.Event) (any, error) {
	if err := s.Bootstrap(); err != nil {
		return nil, err
	}
	return "ok", nil
}

// Reset stops the animation and clears the displayed route. The attract
// overlay is not raised; that is the idle controller's decision.
func (s *Service) Reset() {
	s.stopLoop()
	s.deps.Session.Reset()
	s.presentEnvelope(streaming.TypeReset, nil)
}

// HandleIdleExpire is the idle controller's timeout callback: it resets the
// display and raises the attract overlay.
func (s *Service) HandleIdleExpire() {
	s.Reset()
	s.presentEnvelope(streaming.TypeAttract, streaming.AttractPayload{
		Active:            true,
		RequestFullscreen: s.deps.RequestFullscreen,
	})
}

// HandleWake is the idle controller's wake callback: input dismissed the
// attract overlay.
func (s *Service) HandleWake() {
	s.presentEnvelope(streaming.TypeAttract, streaming.AttractPayload{Active: false})
}

// Shutdown stops the animation loop.
func (s *Service) Shutdown() {
	s.stopLoop()
}

func (s *Service) touchIdle() {
	s.mu.Lock()
	c := s.idle
	s.mu.Unlock()
	if c != nil {
		c.Touch()
	}
}

func (s *Service) currentLoop() *animation.Loop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

func (s *Service) stopLoop() {
	s.mu.Lock()
	loop := s.loop
	s.loop = nil
	s.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

func (s *Service) presentOffline(offline bool, message string) {
	s.presentEnvelope(streaming.TypeOffline, streaming.OfflinePayload{
		Offline: offline,
		Message: message,
	})
}

func (s *Service) presentEnvelope(msgType string, payload any) {
	env, err := streaming.Marshal(msgType, payload)
	if err != nil {
		s.deps.LogManager.Logger().Error("Failed to marshal display message", "type", msgType, "error", err)
		return
	}
	if err := s.deps.Surface.Present(env); err != nil {
		s.deps.LogManager.Logger().Error("Failed to present display message", "type", msgType, "error", err)
	}
}

// Status is the runtime snapshot served by the HTTP status endpoint.
type Status struct {
	KioskID     string `json:"kiosk_id"`
	Destination string `json:"destination"`
	Query       string `json:"query"`
	Offline     bool   `json:"offline"`
	Attract     bool   `json:"attract"`
	RunCount    int    `json:"run_count"`
	ActiveRun   int    `json:"active_run"`
	Animating   bool   `json:"animating"`
}

// CurrentStatus assembles the runtime snapshot.
func (s *Service) CurrentStatus() Status {
	s.mu.Lock()
	loop := s.loop
	attract := false
	if s.idle != nil {
		attract = s.idle.AttractActive()
	}
	s.mu.Unlock()

	animating := loop != nil && loop.Running() && !s.sched.Done()

	return Status{
		KioskID:     s.deps.KioskID,
		Destination: s.deps.Session.Destination(),
		Query:       s.deps.Session.Query(),
		Offline:     s.deps.Offline.Offline(),
		Attract:     attract,
		RunCount:    s.sched.RunCount(),
		ActiveRun:   s.sched.ActiveRun(),
		Animating:   animating,
	}
}
