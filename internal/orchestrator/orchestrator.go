// Package orchestrator owns the pieces the animation engine deliberately
// does not: the dataset cache, the live feed, and the wiring between the
// time cursor, the sessions, and the outside world. Sessions stay pure
// controllers over already-resolved slices; everything stateful about data
// flow lives here.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/animation"
	"github.com/couchcryptid/hazard-animation-service/internal/cursor"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
	"github.com/couchcryptid/hazard-animation-service/internal/track"
)

// Orchestrator wires the dataset cache to the animation and track sessions
// and relays playback commands to the shared time cursor.
type Orchestrator struct {
	cache    *Cache
	slider   *cursor.Slider
	registry *render.Registry
	anim     *animation.Session
	tracks   *track.Session
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New assembles an orchestrator around an existing cursor and renderer
// registry.
func New(
	cache *Cache,
	slider *cursor.Slider,
	registry *render.Registry,
	anim *animation.Session,
	tracks *track.Session,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		cache:    cache,
		slider:   slider,
		registry: registry,
		anim:     anim,
		tracks:   tracks,
		logger:   logger,
		metrics:  metrics,
	}
}

// LoadEvents stores an event dataset, replacing any previous contents.
func (o *Orchestrator) LoadEvents(id string, events []domain.HazardEvent) {
	o.cache.PutEvents(id, events)
	o.logger.Info("dataset loaded", "dataset", id, "events", len(events))
}

// LoadTrack stores a storm-track dataset.
func (o *Orchestrator) LoadTrack(id string, positions []domain.TrackPosition) {
	o.cache.PutTracks(id, positions)
	o.logger.Info("track dataset loaded", "dataset", id, "positions", len(positions))
}

// Datasets returns the cached dataset names, most recently used first.
func (o *Orchestrator) Datasets() []string {
	return o.cache.Keys()
}

// StartAnimation resolves the dataset and starts the animation session on
// it. False when the dataset is unknown or the session rejects the config.
func (o *Orchestrator) StartAnimation(dataset string, cfg animation.Config) bool {
	events, ok := o.cache.Events(dataset)
	if !ok {
		o.logger.Warn("animation start failed: unknown dataset", "dataset", dataset)
		return false
	}
	return o.anim.Start(cfg, events)
}

// StartTrack resolves a storm-track dataset and starts the track session.
func (o *Orchestrator) StartTrack(dataset string, cfg track.Config) bool {
	positions, ok := o.cache.Tracks(dataset)
	if !ok {
		o.logger.Warn("track start failed: unknown dataset", "dataset", dataset)
		return false
	}
	return o.tracks.Start(cfg, positions)
}

// Seek moves the shared cursor; active sessions follow through their
// listeners.
func (o *Orchestrator) Seek(ts time.Time) {
	o.slider.SetTime(ts)
}

// Step nudges the active animation by delta timeline steps, clamped to its
// bounds. A no-op when no animation is running.
func (o *Orchestrator) Step(delta int) {
	o.anim.Step(delta)
}

// Play starts cursor playback.
func (o *Orchestrator) Play() { o.slider.Play() }

// Pause stops cursor playback; the wave clock freezes on its next frame.
func (o *Orchestrator) Pause() { o.slider.Pause() }

// StopAll tears down whatever is running. Safe when nothing is.
func (o *Orchestrator) StopAll() {
	o.anim.Stop()
	o.tracks.Stop()
}

// Snapshot runs the lifecycle filter over a dataset at now: the static
// "what is visible on the map right now" view, as opposed to an animation.
// The enriched features land in one collection ready to render.
func (o *Orchestrator) Snapshot(dataset string, typ domain.HazardType, now time.Time) (*geojson.FeatureCollection, bool) {
	events, ok := o.cache.Events(dataset)
	if !ok {
		return nil, false
	}
	enriched := lifecycle.Filter(events, now, typ, o.logger)
	fc := geojson.NewFeatureCollection()
	for _, e := range enriched {
		fc.AddFeature(e.Feature)
		if !e.Event.TimeValid {
			o.metrics.FilterFailOpen.Inc()
		}
	}
	dropped := len(events) - len(enriched)
	if dropped > 0 {
		o.metrics.FilterDropped.Add(float64(dropped))
	}
	return fc, true
}

// CheckReadiness reports whether at least one dataset is available to serve.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if o.cache.Len() == 0 {
		return errors.New("no datasets cached yet")
	}
	return nil
}
