// Package http exposes the service's operational endpoints and the animation
// control surface: health, readiness, metrics, dataset inspection, animation
// and track control, cursor commands, and a websocket frame stream.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	geojson "github.com/paulmach/go.geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/hazard-animation-service/internal/animation"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/track"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Engine is the animation surface the server drives. The orchestrator
// implements it.
type Engine interface {
	Datasets() []string
	StartAnimation(dataset string, cfg animation.Config) bool
	StartTrack(dataset string, cfg track.Config) bool
	Seek(ts time.Time)
	Step(delta int)
	Play()
	Pause()
	StopAll()
	Snapshot(dataset string, typ domain.HazardType, now time.Time) (*geojson.FeatureCollection, bool)
}

// Server exposes the HTTP and websocket surface.
type Server struct {
	httpServer *http.Server
	engine     Engine
	hub        *Hub
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, engine Engine, ready ReadinessChecker, hub *Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /datasets", s.handleDatasets)
	mux.HandleFunc("GET /datasets/{id}/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /animations", s.handleStartAnimation)
	mux.HandleFunc("DELETE /animations", s.handleStopAll)
	mux.HandleFunc("POST /tracks", s.handleStartTrack)
	mux.HandleFunc("POST /cursor/seek", s.handleSeek)
	mux.HandleFunc("POST /cursor/step", s.handleStep)
	mux.HandleFunc("POST /cursor/play", s.handlePlay)
	mux.HandleFunc("POST /cursor/pause", s.handlePause)
	mux.HandleFunc("GET /ws/frames", s.handleFrames)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"datasets": s.engine.Datasets()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	typ := domain.HazardType(r.URL.Query().Get("type"))
	if !typ.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown or missing hazard type"})
		return
	}
	fc, ok := s.engine.Snapshot(r.PathValue("id"), typ, domain.Now().UTC())
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown dataset"})
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// animationRequest is the wire form of an animation start command.
type animationRequest struct {
	Dataset     string    `json:"dataset"`
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Mode        string    `json:"mode"`
	TimeField   string    `json:"time_field,omitempty"`
	Granularity string    `json:"granularity,omitempty"`
	Renderer    string    `json:"renderer"`
	Window      string    `json:"window,omitempty"`
	EventType   string    `json:"event_type,omitempty"`
	UseFade     bool      `json:"use_fade,omitempty"`
	Center      []float64 `json:"center,omitempty"`
	Zoom        float64   `json:"zoom,omitempty"`
}

func (s *Server) handleStartAnimation(w http.ResponseWriter, r *http.Request) {
	var req animationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cfg := animation.Config{
		ID:        req.ID,
		Label:     req.Label,
		Mode:      animation.ModeKind(req.Mode),
		TimeField: req.TimeField,
		Renderer:  req.Renderer,
		Type:      domain.HazardType(req.EventType),
		UseFade:   req.UseFade,
		Center:    req.Center,
		Zoom:      req.Zoom,
	}
	var err error
	if cfg.Granularity, err = optionalDuration(req.Granularity); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid granularity"})
		return
	}
	if cfg.Window, err = optionalDuration(req.Window); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid window"})
		return
	}

	if !s.engine.StartAnimation(req.Dataset, cfg) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "animation did not start"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// trackRequest is the wire form of a track start command.
type trackRequest struct {
	Dataset     string    `json:"dataset"`
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Mode        string    `json:"mode"`
	Renderer    string    `json:"renderer"`
	Granularity string    `json:"granularity,omitempty"`
	Center      []float64 `json:"center,omitempty"`
	Zoom        float64   `json:"zoom,omitempty"`
}

func (s *Server) handleStartTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cfg := track.Config{
		ID:       req.ID,
		Label:    req.Label,
		Mode:     track.Mode(req.Mode),
		Renderer: req.Renderer,
		Center:   req.Center,
		Zoom:     req.Zoom,
	}
	var err error
	if cfg.Granularity, err = optionalDuration(req.Granularity); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid granularity"})
		return
	}

	if !s.engine.StartTrack(req.Dataset, cfg) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "track did not start"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

func (s *Server) handleStopAll(w http.ResponseWriter, _ *http.Request) {
	s.engine.StopAll()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time time.Time `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid or missing time"})
		return
	}
	s.engine.Seek(req.Time)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Steps int `json:"steps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Steps == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid or missing steps"})
		return
	}
	s.engine.Step(req.Steps)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlay(w http.ResponseWriter, _ *http.Request) {
	s.engine.Play()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.engine.Pause()
	w.WriteHeader(http.StatusNoContent)
}

// handleFrames upgrades to a websocket and streams rendered frames until the
// client disconnects.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := s.hub.add(conn)

	// Read loop only notices disconnects; clients send nothing.
	go func() {
		defer s.hub.remove(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func optionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
