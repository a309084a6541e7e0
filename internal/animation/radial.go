package animation

import (
	"log/slog"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
)

// WaveFrontSpeedKmh is the fixed radial propagation speed, the deep-water
// long-wave average also used by the tsunami lifecycle model.
const WaveFrontSpeedKmh = lifecycle.TsunamiWaveSpeedKmh

// VisibilityBuffer reveals observations slightly before the geometrically
// exact front reaches them. The 5% is a visual compensation, not physics;
// tune it rather than trusting it.
var VisibilityBuffer = 1.05

// radial animates wave propagation from a single source: targets appear as
// the front reaches their distance, connected back to the origin.
type radial struct {
	cfg        Config
	source     *domain.HazardEvent
	targets    []domain.HazardEvent
	sourceTime time.Time
	maxKm      float64
	timeline   Timeline
	logger     *slog.Logger
}

func newRadial(cfg Config, events []domain.HazardEvent, logger *slog.Logger) *radial {
	m := &radial{cfg: cfg, logger: logger}
	for i := range events {
		e := events[i]
		if e.IsSource {
			if m.source != nil {
				logger.Warn("radial dataset has multiple source events, keeping the first",
					"kept", m.source.ID, "ignored", e.ID)
				continue
			}
			src := e
			m.source = &src
			continue
		}
		m.targets = append(m.targets, e)
		if e.DistanceKm > m.maxKm {
			m.maxKm = e.DistanceKm
		}
	}

	switch {
	case m.source == nil:
		// Degrade to an empty display rather than failing the start: the
		// timeline anchors on the earliest observation instead.
		logger.Warn("radial dataset has no source event, rendering empty", "animation_id", cfg.ID)
		if earliest, ok := earliestValid(events); ok {
			m.sourceTime = earliest
		}
	case !m.source.TimeValid:
		logger.Warn("radial source event time unparseable, rendering empty",
			"animation_id", cfg.ID, "event_id", m.source.ID)
		m.source = nil
	default:
		m.sourceTime = m.source.Time
	}

	if !m.sourceTime.IsZero() {
		m.timeline = BuildRadial(m.sourceTime, m.maxKm)
	}
	return m
}

func (m *radial) Kind() ModeKind     { return ModeRadial }
func (m *radial) Timeline() Timeline { return m.timeline }

// SourceTime returns the wave origin time; zero when the dataset had no
// usable source.
func (m *radial) SourceTime() time.Time { return m.sourceTime }

// HasSource reports whether the dataset carried a usable source event. The
// wave clock only runs when it did; the timeline alone is not enough.
func (m *radial) HasSource() bool { return m.source != nil }

// MaxDistanceKm returns the farthest target distance.
func (m *radial) MaxDistanceKm() float64 { return m.maxKm }

func (m *radial) Compute(ts time.Time) DisplayState {
	state := &RadialState{
		Runups:      []*geojson.Feature{},
		Connections: []*geojson.Feature{},
	}
	if m.source == nil {
		return DisplayState{Timestamp: ts, Radial: state}
	}

	elapsed := ts.Sub(m.sourceTime)
	frontKm := elapsed.Hours() * WaveFrontSpeedKmh
	if frontKm < 0 {
		frontKm = 0
	}
	state.Metadata = RadialMetadata{
		SourceTime:    m.sourceTime,
		ElapsedHours:  elapsed.Hours(),
		FrontKm:       frontKm,
		MaxDistanceKm: m.maxKm,
	}

	src := m.source.Feature()
	src.SetProperty("wave_front_km", frontKm)
	state.Source = src
	srcLon, srcLat, srcOK := m.source.Coordinates()

	for _, t := range m.targets {
		if t.DistanceKm*VisibilityBuffer > frontKm {
			continue
		}
		f := t.Feature()
		arrival := m.sourceTime.Add(time.Duration(t.DistanceKm / WaveFrontSpeedKmh * float64(time.Hour)))
		f.SetProperty("arrival_time", arrival.UTC().Format(time.RFC3339))
		f.SetProperty("distance_km", t.DistanceKm)
		state.Runups = append(state.Runups, f)

		if tgtLon, tgtLat, ok := t.Coordinates(); ok && srcOK {
			state.Connections = append(state.Connections, connection(srcLon, srcLat, tgtLon, tgtLat, t))
		}
	}
	return DisplayState{Timestamp: ts, Radial: state}
}

// connection builds the source→target line, shifting the target longitude
// by ±360° when the raw delta exceeds 180° so the line does not wrap the
// long way around the antimeridian.
func connection(srcLon, srcLat, tgtLon, tgtLat float64, target domain.HazardEvent) *geojson.Feature {
	switch {
	case tgtLon-srcLon > 180:
		tgtLon -= 360
	case tgtLon-srcLon < -180:
		tgtLon += 360
	}
	f := geojson.NewLineStringFeature([][]float64{{srcLon, srcLat}, {tgtLon, tgtLat}})
	f.SetProperty("target_id", target.ID)
	f.SetProperty("distance_km", target.DistanceKm)
	return f
}

func earliestValid(events []domain.HazardEvent) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range events {
		if !e.TimeValid {
			continue
		}
		if !found || e.Time.Before(earliest) {
			earliest = e.Time
			found = true
		}
	}
	return earliest, found
}
