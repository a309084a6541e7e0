package lifecycle

import (
	"io"
	"log/slog"
	"testing"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hurricaneTrack(t *testing.T, points int) domain.HazardEvent {
	t.Helper()
	line := make([][]float64, points)
	for i := range line {
		line[i] = []float64{-80.0 + float64(i), 25.0 + float64(i)*0.5}
	}
	start := time.Date(2022, 9, 23, 0, 0, 0, 0, time.UTC)
	return domain.HazardEvent{
		ID:         "al092022",
		Type:       domain.Hurricane,
		Geometry:   geojson.NewLineStringGeometry(line),
		Properties: map[string]interface{}{"name": "Ian"},
		Time:       start,
		EndTime:    start.Add(72 * time.Hour),
		TimeValid:  true,
	}
}

func TestFilter_HurricaneTrackTrim(t *testing.T) {
	e := hurricaneTrack(t, 10)
	start, end := e.Time, e.EndTime
	fade := ModelFor(domain.Hurricane).Fade

	t.Run("at start the track is a single point", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, start, domain.Hurricane, discardLogger())
		require.Len(t, out, 1)
		assert.Len(t, out[0].Feature.Geometry.LineString, 1)
		assert.Equal(t, PhaseActive, out[0].Phase)
	})

	t.Run("halfway the track is half drawn", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, start.Add(36*time.Hour), domain.Hurricane, discardLogger())
		require.Len(t, out, 1)
		assert.Len(t, out[0].Feature.Geometry.LineString, 5)
	})

	t.Run("at end the track is complete", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, end, domain.Hurricane, discardLogger())
		require.Len(t, out, 1)
		assert.Len(t, out[0].Feature.Geometry.LineString, 10)
	})

	t.Run("during fade opacity ramps down over the full track", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, end.Add(fade/2), domain.Hurricane, discardLogger())
		require.Len(t, out, 1)
		assert.Equal(t, PhaseFading, out[0].Phase)
		assert.InDelta(t, 0.5, out[0].Opacity, 1e-9)
		assert.Len(t, out[0].Feature.Geometry.LineString, 10)
	})

	t.Run("at end of fade the event is filtered out", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, end.Add(fade), domain.Hurricane, discardLogger())
		assert.Empty(t, out)
	})

	t.Run("trimming never mutates the source geometry", func(t *testing.T) {
		before := len(e.Geometry.LineString)
		Filter([]domain.HazardEvent{e}, start, domain.Hurricane, discardLogger())
		assert.Len(t, e.Geometry.LineString, before)
	})
}

func TestFilter_DropsOutsideLifecycle(t *testing.T) {
	e := hurricaneTrack(t, 3)

	out := Filter([]domain.HazardEvent{e}, e.Time.Add(-time.Minute), domain.Hurricane, discardLogger())
	assert.Empty(t, out, "events ahead of the cursor are invisible")
}

func TestFilter_EarthquakeWaveRadius(t *testing.T) {
	origin := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	e := domain.HazardEvent{
		ID:         "quake-1",
		Type:       domain.Earthquake,
		Geometry:   geojson.NewPointGeometry([]float64{142.0, 38.0}),
		Properties: map[string]interface{}{"mag": 6.0},
		Time:       origin,
		TimeValid:  true,
	}

	t.Run("wave grows with elapsed time", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, origin.Add(30*time.Minute), domain.Earthquake, discardLogger())
		require.Len(t, out, 1)
		assert.InDelta(t, 90.0, out[0].WaveRadiusKm, 1e-6) // 0.5h × 180 km/h
		radius, ok := out[0].Feature.Properties["wave_radius_km"].(float64)
		require.True(t, ok)
		assert.InDelta(t, 90.0, radius, 1e-6)
	})

	t.Run("wave caps at the formula radius", func(t *testing.T) {
		out := Filter([]domain.HazardEvent{e}, origin.Add(48*time.Hour), domain.Earthquake, discardLogger())
		require.Len(t, out, 1)
		assert.InDelta(t, 158.489, out[0].WaveRadiusKm, 0.01) // 10^(0.25·6+0.7)
	})

	t.Run("data-derived cap wins over the formula", func(t *testing.T) {
		capped := e
		capped.Properties = map[string]interface{}{"mag": 6.0, "max_radius_km": 50.0}
		out := Filter([]domain.HazardEvent{capped}, origin.Add(48*time.Hour), domain.Earthquake, discardLogger())
		require.Len(t, out, 1)
		assert.InDelta(t, 50.0, out[0].WaveRadiusKm, 1e-9)
	})
}

func TestFilter_ExpansionEasing(t *testing.T) {
	origin := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	e := domain.HazardEvent{
		ID:         "quake-2",
		Type:       domain.Earthquake,
		Geometry:   geojson.NewPointGeometry([]float64{0, 0}),
		Properties: map[string]interface{}{"mag": 6.0},
		Time:       origin,
		TimeValid:  true,
	}

	atStart := Filter([]domain.HazardEvent{e}, origin, domain.Earthquake, discardLogger())
	require.Len(t, atStart, 1)
	assert.InDelta(t, 0.0, atStart[0].Expansion, 1e-9)

	// The onset window for a M6 is 10% of ~31.6 days ≈ 3.16 days; well past
	// it the expansion has settled at 1.
	settled := Filter([]domain.HazardEvent{e}, origin.Add(10*24*time.Hour), domain.Earthquake, discardLogger())
	require.Len(t, settled, 1)
	assert.InDelta(t, 1.0, settled[0].Expansion, 1e-9)

	// Midway through the onset window the cubic ease is ahead of linear.
	mid := Filter([]domain.HazardEvent{e}, origin.Add(38*time.Hour), domain.Earthquake, discardLogger())
	require.Len(t, mid, 1)
	assert.Greater(t, mid[0].Expansion, 0.5)
	assert.Less(t, mid[0].Expansion, 1.0)
}

func TestFilter_UnparseableTimeFailsOpen(t *testing.T) {
	e := domain.HazardEvent{
		ID:         "bad-time",
		Type:       domain.Flood,
		Geometry:   geojson.NewPointGeometry([]float64{0, 0}),
		Properties: map[string]interface{}{},
		TimeValid:  false,
	}

	out := Filter([]domain.HazardEvent{e}, time.Now(), domain.Flood, discardLogger())
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Opacity)
	assert.Equal(t, PhaseActive, out[0].Phase)
}
