package animation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-animation-service/internal/cursor"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
)

// Session owns the single active animation. Starting a new animation stops
// the previous one first, so at most one is ever live; every Stop path goes
// through the same teardown regardless of who triggered it.
type Session struct {
	registry *render.Registry
	cursor   cursor.TimeCursor
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	mu       sync.Mutex
	cfg      Config
	mode     Mode
	timeline Timeline
	renderer render.Renderer
	current  int // timeline index of the last rendered step
	active   bool
	wave     *WaveClock
}

// NewSession wires a session to its collaborators. A nil clock falls back
// to the real one.
func NewSession(
	registry *render.Registry,
	tc cursor.TimeCursor,
	logger *slog.Logger,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Session{
		registry: registry,
		cursor:   tc,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// Start validates the config, tears down any running animation, builds the
// mode, registers a time scale and change listener under the animation's id,
// and renders the first step. It reports false when the config or dataset
// cannot produce a playable animation; the previous animation, if any, has
// already been stopped by then.
func (s *Session) Start(cfg Config, events []domain.HazardEvent) bool {
	if cfg.ID == "" || !cfg.Mode.Valid() || len(events) == 0 {
		s.metrics.StartsRejected.WithLabelValues("validation").Inc()
		s.logger.Warn("animation start rejected",
			"animation_id", cfg.ID, "mode", string(cfg.Mode), "events", len(events))
		return false
	}

	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = cfg.withDefaults(autoGranularity(events))

	renderer, ok := s.registry.Lookup(cfg.Renderer)
	if !ok {
		s.metrics.StartsRejected.WithLabelValues("renderer_not_found").Inc()
		s.logger.Warn("animation start rejected: renderer not registered",
			"animation_id", cfg.ID, "renderer", cfg.Renderer)
		return false
	}

	mode, err := newMode(cfg, events, s.logger)
	if err != nil {
		s.metrics.StartsRejected.WithLabelValues("validation").Inc()
		s.logger.Warn("animation start rejected", "animation_id", cfg.ID, "error", err)
		return false
	}

	timeline := mode.Timeline()
	if timeline.Empty() {
		s.metrics.StartsRejected.WithLabelValues("empty_timeline").Inc()
		s.logger.Warn("animation start rejected: no usable timestamps",
			"animation_id", cfg.ID, "mode", string(cfg.Mode))
		return false
	}

	s.cfg = cfg
	s.mode = mode
	s.timeline = timeline
	s.renderer = renderer
	s.current = 0
	s.active = true

	min, max := timeline.Bounds()
	s.cursor.AddScale(cursor.Scale{ID: cfg.ID, Min: min, Max: max, Step: cfg.Granularity})
	s.cursor.SetActiveScale(cfg.ID)
	s.cursor.AddChangeListener(cfg.ID, s.SetTime)
	s.cursor.EnterEventAnimation(min, max)
	s.cursor.Show()

	s.renderLocked(0)

	if r, ok := mode.(*radial); ok && r.HasSource() {
		s.wave = newWaveClock(s.clock, s.cursor, renderer, s.metrics,
			cfg.PlaybackRate, r.SourceTime(), min, max)
		s.wave.Start()
	}

	s.metrics.SessionsStarted.WithLabelValues(string(cfg.Mode)).Inc()
	s.metrics.SessionActive.Set(1)
	s.logger.Info("animation started",
		"animation_id", cfg.ID, "mode", string(cfg.Mode),
		"steps", timeline.Len(), "granularity", cfg.Granularity.String())
	return true
}

// SetTime snaps ts to the nearest timeline step and renders it. Repeated
// calls that resolve to the same step render nothing. Registered as the
// cursor change listener, but safe to call directly.
func (s *Session) SetTime(ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	idx := s.timeline.Nearest(ts)
	if idx == s.current {
		return
	}
	s.renderLocked(idx)
	if s.wave != nil {
		s.wave.Seek(s.timeline.At(idx))
	}
}

// Step advances the animation by delta timeline steps, clamped to the
// bounds. Backs the control surface's step command.
func (s *Session) Step(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	idx := s.current + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= s.timeline.Len() {
		idx = s.timeline.Len() - 1
	}
	if idx == s.current {
		return
	}
	s.renderLocked(idx)
	if s.wave != nil {
		s.wave.Seek(s.timeline.At(idx))
	}
}

// Stop tears the animation down: wave clock cancelled, scale and listener
// removed, axis returned to the primary scale or hidden, renderer cleared,
// then the exit callback. Calling it with nothing active is a no-op, so
// double stops and stop-before-start are safe.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	cfg := s.cfg
	renderer := s.renderer
	wave := s.wave

	s.active = false
	s.mode = nil
	s.timeline = Timeline{}
	s.renderer = nil
	s.wave = nil
	s.current = 0
	s.cfg = Config{}
	s.mu.Unlock()

	if wave != nil {
		wave.Stop()
	}

	s.cursor.RemoveChangeListener(cfg.ID)
	s.cursor.RemoveScale(cfg.ID)
	if s.cursor.HasScale(cursor.PrimaryScaleID) {
		s.cursor.SetActiveScale(cursor.PrimaryScaleID)
	} else {
		s.cursor.Hide()
	}

	renderer.Clear()
	s.metrics.SessionActive.Set(0)
	s.logger.Info("animation stopped", "animation_id", cfg.ID)

	if cfg.OnExit != nil {
		s.runExit(cfg)
	}
}

// IsActive reports whether an animation is running.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveID returns the running animation's id, or "".
func (s *Session) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ""
	}
	return s.cfg.ID
}

// Current returns the timestamp of the last rendered step and whether an
// animation is active.
func (s *Session) Current() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return time.Time{}, false
	}
	return s.timeline.At(s.current), true
}

// renderLocked computes and draws the state for timeline index idx.
// Caller holds s.mu.
func (s *Session) renderLocked(idx int) {
	start := s.clock.Now()
	state := s.mode.Compute(s.timeline.At(idx))
	s.current = idx

	s.renderer.Render(state, s.cfg.Label, render.Options{
		Label:  s.cfg.Label,
		Center: s.cfg.Center,
		Zoom:   s.cfg.Zoom,
		Fade:   s.cfg.UseFade,
	})
	s.metrics.FramesRendered.WithLabelValues(string(s.cfg.Mode)).Inc()
	s.metrics.ComputeDuration.Observe(s.clock.Since(start).Seconds())
}

// runExit invokes the config's exit callback, recovering a panic so a
// misbehaving callback cannot abort teardown.
func (s *Session) runExit(cfg Config) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("animation exit callback panicked",
				"animation_id", cfg.ID, "panic", r)
		}
	}()
	cfg.OnExit()
}

// autoGranularity derives the default bucket size from the dataset's
// parseable time span.
func autoGranularity(events []domain.HazardEvent) time.Duration {
	var min, max time.Time
	for _, e := range events {
		if !e.TimeValid {
			continue
		}
		if min.IsZero() || e.Time.Before(min) {
			min = e.Time
		}
		if max.IsZero() || e.Time.After(max) {
			max = e.Time
		}
	}
	if min.IsZero() {
		return time.Hour
	}
	return lifecycle.AutoGranularity(max.Sub(min))
}
