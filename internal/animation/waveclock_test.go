package animation

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
)

type stubPlaying struct{ playing bool }

func (s *stubPlaying) IsPlaying() bool { return s.playing }

// Ticks are driven by calling tick directly so the tests stay deterministic;
// the loop itself is only exercised for startup and shutdown.
func TestWaveClock(t *testing.T) {
	source := time.Date(2011, time.March, 11, 5, 46, 24, 0, time.UTC)
	min, max := source, source.Add(12*time.Hour)

	newClock := func(playing bool) (*WaveClock, *clockwork.FakeClock, *render.Recorder, *stubPlaying) {
		fc := clockwork.NewFakeClockAt(source)
		rec := render.NewRecorder()
		p := &stubPlaying{playing: playing}
		w := newWaveClock(fc, p, rec, observability.NewMetricsForTesting(),
			DefaultPlaybackRate, source, min, max)
		return w, fc, rec, p
	}

	t.Run("tick projects simulated time by wall elapsed times rate", func(t *testing.T) {
		w, fc, rec, _ := newClock(true)

		// One wall second at 3600x is one simulated hour: a 700 km front.
		fc.Advance(time.Second)
		w.tick()

		last, ok := rec.Last()
		require.True(t, ok)
		require.Equal(t, "update", last.Kind)
		frame := last.Data.(WaveFrame)
		assert.InDelta(t, 700.0, frame.FrontKm, 1e-6)
		assert.Equal(t, source.Add(time.Hour), frame.SimTime)
	})

	t.Run("pause freezes the simulated time", func(t *testing.T) {
		w, fc, rec, p := newClock(false)

		fc.Advance(time.Minute)
		w.tick()
		assert.Zero(t, rec.UpdateCount())

		// Resuming after the pause must not replay the paused minute.
		p.playing = true
		fc.Advance(time.Second)
		w.tick()

		last, _ := rec.Last()
		assert.Equal(t, source.Add(time.Hour), last.Data.(WaveFrame).SimTime)
	})

	t.Run("clamps to the timeline bounds", func(t *testing.T) {
		w, fc, rec, _ := newClock(true)

		fc.Advance(time.Hour) // 3600 simulated hours, far past max
		w.tick()

		last, _ := rec.Last()
		assert.Equal(t, max, last.Data.(WaveFrame).SimTime)

		// Once clamped the overshoot must not linger: the next second of
		// wall time stays at the bound instead of jumping past it.
		fc.Advance(time.Second)
		w.tick()
		last, _ = rec.Last()
		assert.Equal(t, max, last.Data.(WaveFrame).SimTime)
	})

	t.Run("seek realigns the reference pair", func(t *testing.T) {
		w, fc, rec, _ := newClock(true)

		fc.Advance(time.Second)
		w.Seek(source.Add(6 * time.Hour))
		fc.Advance(time.Second)
		w.tick()

		last, _ := rec.Last()
		assert.Equal(t, source.Add(7*time.Hour), last.Data.(WaveFrame).SimTime)
	})

	t.Run("seek clamps out-of-range targets", func(t *testing.T) {
		w, _, rec, _ := newClock(true)

		w.Seek(source.Add(-time.Hour))
		w.tick()

		last, _ := rec.Last()
		assert.Equal(t, min, last.Data.(WaveFrame).SimTime)
	})

	t.Run("stop terminates the loop and is idempotent", func(t *testing.T) {
		w, _, _, _ := newClock(true)

		w.Start()
		w.Stop()
		assert.NotPanics(t, w.Stop)
	})
}
