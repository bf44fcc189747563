// Package server exposes the kiosk's HTTP surface: health and status
// endpoints, the command entry point, and the WebSocket display stream.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/uninav/wayfinder/internal/dispatcher"
	"github.com/uninav/wayfinder/internal/display/wshub"
	"github.com/uninav/wayfinder/internal/handlers"
	"github.com/uninav/wayfinder/internal/session"
)

// Server is the kiosk's HTTP listener.
type Server struct {
	log     *slog.Logger
	disp    *dispatcher.Dispatcher
	service *handlers.Service
	session *session.Context
	hub     *wshub.Hub

	httpServer *http.Server
}

// CommandRequest is the body of POST /api/v1/command.
type CommandRequest struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// CommandResponse is the body returned for a dispatched command.
type CommandResponse struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// New creates the HTTP server for the given listen address.
func New(addr string, log *slog.Logger, disp *dispatcher.Dispatcher, service *handlers.Service, sess *session.Context, hub *wshub.Hub) *Server {
	s := &Server{
		log:     log,
		disp:    disp,
		service: service,
		session: sess,
		hub:     hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", s.handleHealthcheck)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/rooms", s.handleRooms)
	r.Get("/api/v1/floors", s.handleFloors)
	r.Post("/api/v1/command", s.handleCommand)
	r.Get("/ws", hub.ServeHTTP)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving HTTP until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.service.CurrentStatus()
	s.writeJSON(w, http.StatusOK, struct {
		handlers.Status
		Displays int `json:"displays"`
	}{Status: status, Displays: s.hub.ClientCount()})
}

// handleRooms serves the cached room list so search front-ends can offer
// suggestions without a round trip to the navigation API.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Rooms())
}

func (s *Server) handleFloors(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Floors())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, CommandResponse{Error: "invalid request body"})
		return
	}
	if !s.disp.HasHandler(req.Command) {
		s.writeJSON(w, http.StatusNotFound, CommandResponse{Error: fmt.Sprintf("unknown command: %s", req.Command)})
		return
	}

	result, err := s.disp.Dispatch(dispatcher.Event{
		Command:   req.Command,
		Args:      req.Args,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, CommandResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, CommandResponse{OK: true, Result: result})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}
