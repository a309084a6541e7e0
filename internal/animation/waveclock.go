package animation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
)

// DefaultFrameInterval is the wave clock's tick cadence, roughly 30 frames
// per second. It is independent of, and much finer than, the discrete
// timeline tick rate.
const DefaultFrameInterval = 33 * time.Millisecond

// playingChecker is the one bit of cursor state the wave clock consumes.
type playingChecker interface {
	IsPlaying() bool
}

// WaveClock interpolates smooth wave-front growth between discrete timeline
// ticks. It holds a (wallStart, simStart) pair; every frame it projects the
// simulated time forward by elapsed wall time times the playback rate,
// clamps to the timeline bounds, and writes only the wave-front radius
// through Renderer.Update. It never issues a structural render, so it
// cannot conflict with mode-driven re-renders.
type WaveClock struct {
	clock    clockwork.Clock
	playing  playingChecker
	renderer render.Renderer
	metrics  *observability.Metrics

	interval time.Duration
	rate     float64 // simulated seconds per wall second
	source   time.Time
	min, max time.Time

	mu        sync.Mutex
	wallStart time.Time
	simStart  time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// newWaveClock builds a clock anchored at the timeline's first step.
func newWaveClock(
	clock clockwork.Clock,
	playing playingChecker,
	renderer render.Renderer,
	metrics *observability.Metrics,
	rate float64,
	source, min, max time.Time,
) *WaveClock {
	now := clock.Now()
	return &WaveClock{
		clock:     clock,
		playing:   playing,
		renderer:  renderer,
		metrics:   metrics,
		interval:  DefaultFrameInterval,
		rate:      rate,
		source:    source,
		min:       min,
		max:       max,
		wallStart: now,
		simStart:  min,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the frame loop.
func (w *WaveClock) Start() {
	go w.loop()
}

// Seek realigns the clock to a new simulated reference: simStart becomes
// the target, wallStart becomes now. Called on every discrete tick so the
// continuous loop always extends from the last known timeline position.
func (w *WaveClock) Seek(ts time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.simStart = w.clampSim(ts)
	w.wallStart = w.clock.Now()
}

// Stop cancels the loop and waits for it to exit. Safe to call repeatedly.
func (w *WaveClock) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

func (w *WaveClock) loop() {
	defer close(w.done)
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.Chan():
			w.tick()
		}
	}
}

func (w *WaveClock) tick() {
	now := w.clock.Now()

	w.mu.Lock()
	if !w.playing.IsPlaying() {
		// Paused: freeze the simulated time by consuming the wall time.
		w.wallStart = now
		w.mu.Unlock()
		return
	}
	elapsed := now.Sub(w.wallStart)
	sim := w.simStart.Add(time.Duration(float64(elapsed) * w.rate))
	if clamped := w.clampSim(sim); !clamped.Equal(sim) {
		// Hit a timeline bound; re-anchor so overshoot doesn't accumulate.
		sim = clamped
		w.simStart = clamped
		w.wallStart = now
	}
	w.mu.Unlock()

	frontKm := sim.Sub(w.source).Hours() * WaveFrontSpeedKmh
	if frontKm < 0 {
		frontKm = 0
	}
	w.renderer.Update(WaveFrame{FrontKm: frontKm, SimTime: sim}, render.Options{})
	w.metrics.WaveTicks.Inc()
}

func (w *WaveClock) clampSim(ts time.Time) time.Time {
	if ts.Before(w.min) {
		return w.min
	}
	if ts.After(w.max) {
		return w.max
	}
	return ts
}
