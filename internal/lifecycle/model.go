package lifecycle

import (
	"math"
	"time"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// Wave propagation speeds in km/h. Tsunami speed matches the deep-water
// long-wave average the radial animation uses; the others are visual
// calibrations, not physics.
const (
	TsunamiWaveSpeedKmh    = 700
	EarthquakeWaveSpeedKmh = 180
	VolcanoWaveSpeedKmh    = 15
)

// Model describes how one hazard type's lifecycle is computed: its active
// span, how long it fades after ending, and (for wave-capable types) how its
// wave front grows and where it stops.
type Model struct {
	// Span returns the active interval. End may derive from an explicit end
	// time, a magnitude-scaled formula, or a fixed type default.
	Span func(e domain.HazardEvent) (start, end time.Time)

	// Fade is how long the event remains visible, ramping to transparent,
	// after its active span ends.
	Fade time.Duration

	// WaveSpeedKmh is the wave-front growth rate; zero for non-wave types.
	WaveSpeedKmh float64

	// MaxWaveKm caps the wave front, preferring data-derived extents over
	// the formula fallback.
	MaxWaveKm func(e domain.HazardEvent) float64
}

// ModelFor returns the lifecycle model for a hazard type.
func ModelFor(typ domain.HazardType) Model {
	switch typ {
	case domain.Earthquake:
		return Model{
			Span:         earthquakeSpan,
			Fade:         3 * 24 * time.Hour,
			WaveSpeedKmh: EarthquakeWaveSpeedKmh,
			MaxWaveKm:    earthquakeMaxWaveKm,
		}
	case domain.Volcano:
		return Model{
			Span:         spanWithDefault(30 * 24 * time.Hour),
			Fade:         7 * 24 * time.Hour,
			WaveSpeedKmh: VolcanoWaveSpeedKmh,
			MaxWaveKm:    volcanoMaxWaveKm,
		}
	case domain.Tsunami:
		return Model{
			Span:         tsunamiSpan,
			Fade:         12 * time.Hour,
			WaveSpeedKmh: TsunamiWaveSpeedKmh,
			MaxWaveKm:    tsunamiMaxWaveKm,
		}
	case domain.Hurricane:
		return Model{
			Span: spanWithDefault(5 * 24 * time.Hour),
			Fade: 24 * time.Hour,
		}
	case domain.Tornado:
		return Model{
			Span: spanWithDefault(time.Hour),
			Fade: 24 * time.Hour,
		}
	case domain.Wildfire:
		return Model{
			Span: spanWithDefault(14 * 24 * time.Hour),
			Fade: 3 * 24 * time.Hour,
		}
	case domain.Flood:
		return Model{
			Span: spanWithDefault(7 * 24 * time.Hour),
			Fade: 2 * 24 * time.Hour,
		}
	}
	// Unknown types get a conservative one-day span so bad data still shows.
	return Model{Span: spanWithDefault(24 * time.Hour), Fade: 24 * time.Hour}
}

// spanWithDefault builds a Span that honors an explicit end time and falls
// back to start + d.
func spanWithDefault(d time.Duration) func(domain.HazardEvent) (time.Time, time.Time) {
	return func(e domain.HazardEvent) (time.Time, time.Time) {
		if e.HasEnd() {
			return e.Time, e.EndTime
		}
		return e.Time, e.Time.Add(d)
	}
}

// earthquakeSpan scales the active window with magnitude using the
// Gardner–Knopoff aftershock window, so a great earthquake's sequence stays
// on screen for weeks while a M4 clears in under a day.
func earthquakeSpan(e domain.HazardEvent) (time.Time, time.Time) {
	if e.HasEnd() {
		return e.Time, e.EndTime
	}
	return e.Time, e.Time.Add(Window(e.Magnitude()))
}

// tsunamiSpan ends when the wave front reaches the farthest recorded runup,
// with a two hour floor for near-field events.
func tsunamiSpan(e domain.HazardEvent) (time.Time, time.Time) {
	if e.HasEnd() {
		return e.Time, e.EndTime
	}
	travel := time.Duration(tsunamiMaxWaveKm(e) / TsunamiWaveSpeedKmh * float64(time.Hour))
	if travel < 2*time.Hour {
		travel = 2 * time.Hour
	}
	return e.Time, e.Time.Add(travel)
}

func earthquakeMaxWaveKm(e domain.HazardEvent) float64 {
	if v, ok := dataMaxKm(e); ok {
		return v
	}
	// Aftershock-zone radius approximation: 10^(0.25M + 0.7) km.
	// M6 → ~160 km, M9 → ~900 km.
	return math.Pow(10, 0.25*e.Magnitude()+0.7)
}

func volcanoMaxWaveKm(e domain.HazardEvent) float64 {
	if v, ok := dataMaxKm(e); ok {
		return v
	}
	// Ash dispersal doubling per VEI step off a 10 km base.
	vei := e.Magnitude()
	if vei <= 0 {
		vei = 2
	}
	return 10 * math.Pow(2, vei)
}

func tsunamiMaxWaveKm(e domain.HazardEvent) float64 {
	if v, ok := dataMaxKm(e); ok {
		return v
	}
	if e.DistanceKm > 0 {
		return e.DistanceKm
	}
	// Basin-crossing fallback: roughly the width of the Pacific.
	return 10000
}

func dataMaxKm(e domain.HazardEvent) (float64, bool) {
	for _, key := range []string{"max_radius_km", "max_runup_km", "felt_radius_km"} {
		if v, ok := e.PropFloat(key); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}
