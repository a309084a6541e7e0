package track

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-animation-service/internal/cursor"
	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/observability"
	"github.com/couchcryptid/hazard-animation-service/internal/render"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type trackFixture struct {
	session  *Session
	recorder *render.Recorder
	slider   *cursor.Slider
}

func newTrackFixture(t *testing.T) *trackFixture {
	t.Helper()
	base := time.Date(2023, time.August, 30, 0, 0, 0, 0, time.UTC)
	rec := render.NewRecorder()
	registry := render.NewRegistry()
	registry.Register("map", rec)
	slider := cursor.NewSlider(base)
	s := NewSession(registry, slider, discardLogger(), observability.NewMetricsForTesting())
	return &trackFixture{session: s, recorder: rec, slider: slider}
}

// idaliaTrack is a five-fix track every six hours, intensifying toward
// landfall with wind radii on the later fixes.
func idaliaTrack() []domain.TrackPosition {
	base := time.Date(2023, time.August, 29, 12, 0, 0, 0, time.UTC)
	fixes := []domain.TrackPosition{
		{Lat: 21.9, Lon: -85.0, Time: base, WindSpeedKt: 60},
		{Lat: 23.6, Lon: -85.2, Time: base.Add(6 * time.Hour), WindSpeedKt: 70, Category: "1"},
		{Lat: 25.5, Lon: -85.0, Time: base.Add(12 * time.Hour), WindSpeedKt: 90, Category: "2"},
		{Lat: 27.6, Lon: -84.4, Time: base.Add(18 * time.Hour), WindSpeedKt: 110, Category: "3",
			WindRadii: map[int]domain.QuadrantRadii{
				34: {NE: 140, SE: 120, SW: 70, NW: 100},
				50: {NE: 60, SE: 50, SW: 30, NW: 40},
				64: {NE: 25, SE: 20, SW: 15, NW: 20},
			}},
		{Lat: 29.8, Lon: -83.4, Time: base.Add(24 * time.Hour), WindSpeedKt: 115, Category: "3",
			WindRadii: map[int]domain.QuadrantRadii{
				34: {NE: 150, SE: 130, SW: 80, NW: 110},
			}},
	}
	return fixes
}

func TestTrackSessionStart(t *testing.T) {
	cfg := Config{ID: "idalia", Label: "Hurricane Idalia", Mode: ModeFocused, Renderer: "map"}

	t.Run("focused start owns a scale and renders the first fix", func(t *testing.T) {
		fx := newTrackFixture(t)
		require.True(t, fx.session.Start(cfg, idaliaTrack()))

		assert.True(t, fx.session.IsActive())
		assert.True(t, fx.slider.HasScale("idalia"))
		assert.Equal(t, "idalia", fx.slider.ActiveScaleID())
		assert.Equal(t, 1, fx.recorder.RenderCount())

		last, _ := fx.recorder.Last()
		state := last.Data.(DisplayState)
		assert.Nil(t, state.Line, "single fix draws no line")
		require.NotNil(t, state.Current)
		assert.Empty(t, state.Past)
	})

	t.Run("rolling start only listens", func(t *testing.T) {
		fx := newTrackFixture(t)
		rolling := cfg
		rolling.Mode = ModeRolling
		require.True(t, fx.session.Start(rolling, idaliaTrack()))

		assert.False(t, fx.slider.HasScale("idalia"))
		assert.Equal(t, cursor.PrimaryScaleID, fx.slider.ActiveScaleID())
		assert.Equal(t, 1, fx.recorder.RenderCount())
	})

	t.Run("rejects missing id, empty track, bad mode, unknown renderer", func(t *testing.T) {
		fx := newTrackFixture(t)
		track := idaliaTrack()

		assert.False(t, fx.session.Start(Config{Mode: ModeFocused, Renderer: "map"}, track))
		assert.False(t, fx.session.Start(cfg, nil))
		bad := cfg
		bad.Mode = "orbiting"
		assert.False(t, fx.session.Start(bad, track))
		missing := cfg
		missing.Renderer = "globe"
		assert.False(t, fx.session.Start(missing, track))

		assert.False(t, fx.session.IsActive())
		assert.Zero(t, fx.recorder.RenderCount())
	})

	t.Run("positions are sorted on the way in", func(t *testing.T) {
		fx := newTrackFixture(t)
		track := idaliaTrack()
		track[0], track[4] = track[4], track[0]
		require.True(t, fx.session.Start(cfg, track))

		last, _ := fx.recorder.Last()
		state := last.Data.(DisplayState)
		assert.Equal(t, 60.0, state.Current.Properties["wind_speed_kt"])
	})
}

func TestTrackSessionSetPosition(t *testing.T) {
	cfg := Config{ID: "idalia", Mode: ModeFocused, Renderer: "map"}
	fx := newTrackFixture(t)
	require.True(t, fx.session.Start(cfg, idaliaTrack()))

	t.Run("grows line, past markers, and wind polygons", func(t *testing.T) {
		fx.session.SetPosition(3)

		last, _ := fx.recorder.Last()
		state := last.Data.(DisplayState)
		require.NotNil(t, state.Line)
		assert.Len(t, state.Line.Geometry.LineString, 4)
		assert.Len(t, state.Past, 3)
		assert.Equal(t, "3", state.Current.Properties["category"])
		assert.Len(t, state.WindPolygons, 3)
	})

	t.Run("repeated index renders nothing", func(t *testing.T) {
		renders := fx.recorder.RenderCount()
		fx.session.SetPosition(3)
		assert.Equal(t, renders, fx.recorder.RenderCount())
	})

	t.Run("out-of-range index clamps", func(t *testing.T) {
		fx.session.SetPosition(99)
		idx, ok := fx.session.Current()
		require.True(t, ok)
		assert.Equal(t, 4, idx)

		last, _ := fx.recorder.Last()
		state := last.Data.(DisplayState)
		assert.Len(t, state.WindPolygons, 1, "final fix reports only the 34 kt extent")
	})
}

func TestTrackSessionSetTimestamp(t *testing.T) {
	base := time.Date(2023, time.August, 29, 12, 0, 0, 0, time.UTC)
	cfg := Config{ID: "idalia", Mode: ModeFocused, Renderer: "map"}
	fx := newTrackFixture(t)
	require.True(t, fx.session.Start(cfg, idaliaTrack()))

	// Cursor changes route through the registered listener.
	fx.slider.SetTime(base.Add(13 * time.Hour))
	idx, _ := fx.session.Current()
	assert.Equal(t, 2, idx)

	renders := fx.recorder.RenderCount()
	fx.slider.SetTime(base.Add(11 * time.Hour))
	idx, _ = fx.session.Current()
	assert.Equal(t, 2, idx)
	assert.Equal(t, renders, fx.recorder.RenderCount(), "same nearest fix must not re-render")
}

func TestTrackSessionStop(t *testing.T) {
	t.Run("focused stop returns the axis and fires the exit callback once", func(t *testing.T) {
		fx := newTrackFixture(t)
		exits := 0
		cfg := Config{
			ID: "idalia", Mode: ModeFocused, Renderer: "map",
			OnExit: func() { exits++ },
		}
		require.True(t, fx.session.Start(cfg, idaliaTrack()))

		fx.session.Stop()
		fx.session.Stop()

		assert.False(t, fx.session.IsActive())
		assert.Equal(t, 1, exits)
		assert.Equal(t, 1, fx.recorder.ClearCount())
		assert.False(t, fx.slider.HasScale("idalia"))
		assert.Equal(t, cursor.PrimaryScaleID, fx.slider.ActiveScaleID())
	})

	t.Run("rolling stop leaves the axis untouched", func(t *testing.T) {
		fx := newTrackFixture(t)
		exits := 0
		cfg := Config{
			ID: "idalia", Mode: ModeRolling, Renderer: "map",
			OnExit: func() { exits++ },
		}
		require.True(t, fx.session.Start(cfg, idaliaTrack()))

		fx.session.Stop()

		assert.Equal(t, 0, exits, "rolling tracks have no exit affordance")
		assert.Equal(t, 1, fx.recorder.ClearCount())
		assert.Equal(t, cursor.PrimaryScaleID, fx.slider.ActiveScaleID())
	})

	t.Run("panicking exit callback does not abort teardown", func(t *testing.T) {
		fx := newTrackFixture(t)
		cfg := Config{
			ID: "idalia", Mode: ModeFocused, Renderer: "map",
			OnExit: func() { panic("exit hook blew up") },
		}
		require.True(t, fx.session.Start(cfg, idaliaTrack()))

		assert.NotPanics(t, fx.session.Stop)
		assert.Equal(t, 1, fx.recorder.ClearCount())
	})
}
