// Package track animates storm tracks: a growing track line, past and
// current position markers, and quadrant wind-radius polygons. It is a peer
// of the animation session, sharing the seek and time contract, but owns
// flat position records instead of GeoJSON events.
package track

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/cursor"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
)

// Mode selects who drives the track's time axis.
type Mode string

const (
	// ModeFocused gives the track its own time scale, camera, and exit
	// affordance. Used when the user drills into one storm.
	ModeFocused Mode = "focused"

	// ModeRolling attaches to an externally driven cursor: no owned scale,
	// no camera moves. Used when the track plays inside a wider animation.
	ModeRolling Mode = "rolling"
)

// Valid reports whether m names a known track mode.
func (m Mode) Valid() bool { return m == ModeFocused || m == ModeRolling }

// Config describes one track session.
type Config struct {
	ID          string
	Label       string
	Mode        Mode
	Renderer    string
	Granularity time.Duration // owned-scale step; zero: 6h

	// Camera hints, focused mode only.
	Center []float64
	Zoom   float64

	// OnExit runs inside Stop for focused tracks. Recovered if it panics.
	OnExit func()
}

// DisplayState is what one position index renders: the line up to the
// position, the markers, and the wind-extent polygons at the current fix.
type DisplayState struct {
	Timestamp    time.Time          `json:"timestamp"`
	Line         *geojson.Feature   `json:"line,omitempty"`
	Past         []*geojson.Feature `json:"past"`
	Current      *geojson.Feature   `json:"current,omitempty"`
	WindPolygons []*geojson.Feature `json:"wind_polygons"`
}

// Session drives one storm track. Focused sessions own their scale and
// listener on the cursor; rolling sessions only listen.
type Session struct {
	registry *render.Registry
	cursor   cursor.TimeCursor
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu        sync.Mutex
	cfg       Config
	positions []domain.TrackPosition // sorted by time
	renderer  render.Renderer
	current   int
	active    bool
}

// NewSession wires a track session to its collaborators.
func NewSession(
	registry *render.Registry,
	tc cursor.TimeCursor,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Session {
	return &Session{registry: registry, cursor: tc, logger: logger, metrics: metrics}
}

// Start validates the config, sorts the positions, attaches to the cursor,
// and renders the first fix. False when the session cannot start; any prior
// track on this session is stopped first.
func (s *Session) Start(cfg Config, positions []domain.TrackPosition) bool {
	if cfg.ID == "" || !cfg.Mode.Valid() || len(positions) == 0 {
		s.metrics.StartsRejected.WithLabelValues("validation").Inc()
		s.logger.Warn("track start rejected",
			"track_id", cfg.ID, "mode", string(cfg.Mode), "positions", len(positions))
		return false
	}

	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Granularity <= 0 {
		cfg.Granularity = 6 * time.Hour
	}

	renderer, ok := s.registry.Lookup(cfg.Renderer)
	if !ok {
		s.metrics.StartsRejected.WithLabelValues("renderer_not_found").Inc()
		s.logger.Warn("track start rejected: renderer not registered",
			"track_id", cfg.ID, "renderer", cfg.Renderer)
		return false
	}

	sorted := make([]domain.TrackPosition, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	s.cfg = cfg
	s.positions = sorted
	s.renderer = renderer
	s.current = 0
	s.active = true

	min := sorted[0].Time
	max := sorted[len(sorted)-1].Time
	if cfg.Mode == ModeFocused {
		s.cursor.AddScale(cursor.Scale{ID: cfg.ID, Min: min, Max: max, Step: cfg.Granularity})
		s.cursor.SetActiveScale(cfg.ID)
		s.cursor.EnterEventAnimation(min, max)
		s.cursor.Show()
	}
	s.cursor.AddChangeListener(cfg.ID, s.SetTimestamp)

	s.renderLocked(0)
	s.metrics.SessionsStarted.WithLabelValues("track_" + string(cfg.Mode)).Inc()
	s.logger.Info("track started",
		"track_id", cfg.ID, "mode", string(cfg.Mode), "positions", len(sorted))
	return true
}

// SetPosition renders the fix at index, clamped to the track. A repeated
// index renders nothing.
func (s *Session) SetPosition(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.positions) {
		index = len(s.positions) - 1
	}
	if index == s.current {
		return
	}
	s.renderLocked(index)
}

// SetTimestamp maps ts to the nearest fix and renders it. Registered as the
// cursor change listener.
func (s *Session) SetTimestamp(ts time.Time) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	idx := s.nearestLocked(ts)
	if idx == s.current {
		s.mu.Unlock()
		return
	}
	s.renderLocked(idx)
	s.mu.Unlock()
}

// Stop detaches from the cursor, clears the renderer, and for focused
// tracks returns the axis and fires the exit callback. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	cfg := s.cfg
	renderer := s.renderer

	s.active = false
	s.positions = nil
	s.renderer = nil
	s.current = 0
	s.cfg = Config{}
	s.mu.Unlock()

	s.cursor.RemoveChangeListener(cfg.ID)
	if cfg.Mode == ModeFocused {
		s.cursor.RemoveScale(cfg.ID)
		if s.cursor.HasScale(cursor.PrimaryScaleID) {
			s.cursor.SetActiveScale(cursor.PrimaryScaleID)
		} else {
			s.cursor.Hide()
		}
	}

	renderer.Clear()
	s.logger.Info("track stopped", "track_id", cfg.ID)

	if cfg.Mode == ModeFocused && cfg.OnExit != nil {
		s.runExit(cfg)
	}
}

// IsActive reports whether a track is running.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Current returns the index of the last rendered fix and whether a track
// is active.
func (s *Session) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0, false
	}
	return s.current, true
}

// nearestLocked maps a timestamp to the closest fix by absolute difference,
// ties toward the earlier fix. Caller holds s.mu.
func (s *Session) nearestLocked(ts time.Time) int {
	n := len(s.positions)
	i := sort.Search(n, func(j int) bool { return !s.positions[j].Time.Before(ts) })
	if i == 0 {
		return 0
	}
	if i == n {
		return n - 1
	}
	if ts.Sub(s.positions[i-1].Time) <= s.positions[i].Time.Sub(ts) {
		return i - 1
	}
	return i
}

// renderLocked builds and draws the display state for fix index.
// Caller holds s.mu.
func (s *Session) renderLocked(index int) {
	state := s.computeLocked(index)
	s.current = index

	opts := render.Options{Label: s.cfg.Label}
	if s.cfg.Mode == ModeFocused {
		opts.Center = []float64{s.positions[index].Lon, s.positions[index].Lat}
		opts.Zoom = s.cfg.Zoom
	}
	s.renderer.Render(state, s.cfg.Label, opts)
	s.metrics.FramesRendered.WithLabelValues("track_" + string(s.cfg.Mode)).Inc()
}

// computeLocked assembles the growing line, markers, and wind polygons for
// the prefix ending at index. Caller holds s.mu.
func (s *Session) computeLocked(index int) DisplayState {
	prefix := s.positions[:index+1]
	state := DisplayState{
		Timestamp:    s.positions[index].Time,
		Past:         make([]*geojson.Feature, 0, index),
		WindPolygons: WindPolygons(s.positions[index]),
	}

	line := make([][]float64, 0, len(prefix))
	for i, p := range prefix {
		line = append(line, []float64{p.Lon, p.Lat})
		f := positionFeature(p)
		if i == index {
			state.Current = f
		} else {
			state.Past = append(state.Past, f)
		}
	}
	if len(line) >= 2 {
		state.Line = geojson.NewLineStringFeature(line)
	}
	return state
}

// positionFeature converts a fix into its point marker.
func positionFeature(p domain.TrackPosition) *geojson.Feature {
	f := geojson.NewPointFeature([]float64{p.Lon, p.Lat})
	f.SetProperty("wind_speed_kt", p.WindSpeedKt)
	f.SetProperty("position_time", p.Time.UTC().Format(time.RFC3339))
	if p.PressureMb != 0 {
		f.SetProperty("pressure_mb", p.PressureMb)
	}
	if p.Category != "" {
		f.SetProperty("category", p.Category)
	}
	return f
}

// runExit invokes the exit callback, recovering a panic so teardown always
// completes.
func (s *Session) runExit(cfg Config) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("track exit callback panicked", "track_id", cfg.ID, "panic", r)
		}
	}()
	cfg.OnExit()
}
