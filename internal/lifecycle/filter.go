package lifecycle

import (
	"log/slog"
	"math"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// Phase labels where an event sits in its lifecycle.
type Phase string

const (
	PhaseActive Phase = "active"
	PhaseFading Phase = "fading"
)

// expansionCap bounds the onset-expansion window: the eased grow-in runs
// over the first 10% of the active span or five days, whichever is shorter.
const expansionCap = 5 * 24 * time.Hour

// Enriched is one visible event with its computed display attributes. The
// Feature carries the same values as annotation properties plus, for
// hurricanes, a track geometry trimmed to the current progress.
type Enriched struct {
	Event        domain.HazardEvent
	Feature      *geojson.Feature
	Phase        Phase
	Opacity      float64
	Expansion    float64
	WaveRadiusKm float64
}

// Filter returns the events visible at now, enriched with phase, opacity,
// eased expansion progress, and (for wave-capable hazards) the current wave
// radius. Events outside [start, end+fade) are omitted. Events whose time
// failed to parse are passed through fully visible rather than hidden.
// Source events are never mutated.
func Filter(events []domain.HazardEvent, now time.Time, typ domain.HazardType, logger *slog.Logger) []Enriched {
	model := ModelFor(typ)
	out := make([]Enriched, 0, len(events))

	for _, e := range events {
		if !e.TimeValid {
			logger.Warn("event without parseable time rendered fail-open", "event_id", e.ID, "type", typ)
			out = append(out, failOpen(e))
			continue
		}

		start, end := model.Span(e)
		fadeEnd := end.Add(model.Fade)
		if now.Before(start) || !now.Before(fadeEnd) {
			continue
		}

		enriched := Enriched{Event: e, Phase: PhaseActive, Opacity: 1.0}
		if now.After(end) {
			enriched.Phase = PhaseFading
			enriched.Opacity = 1.0 - float64(now.Sub(end))/float64(model.Fade)
		}

		elapsed := now.Sub(start)
		enriched.Expansion = easeOutCubic(expansionProgress(elapsed, end.Sub(start)))

		if model.WaveSpeedKmh > 0 {
			radius := elapsed.Hours() * model.WaveSpeedKmh
			if maxKm := model.MaxWaveKm(e); radius > maxKm {
				radius = maxKm
			}
			enriched.WaveRadiusKm = radius
		}

		enriched.Feature = annotate(e, enriched, now, start, end)
		out = append(out, enriched)
	}
	return out
}

func failOpen(e domain.HazardEvent) Enriched {
	enriched := Enriched{Event: e, Phase: PhaseActive, Opacity: 1.0, Expansion: 1.0}
	enriched.Feature = annotateBase(e, enriched)
	return enriched
}

// expansionProgress maps elapsed time to 0..1 over the onset window:
// min(10% of the active duration, five days).
func expansionProgress(elapsed, active time.Duration) float64 {
	window := time.Duration(float64(active) * 0.1)
	if window > expansionCap {
		window = expansionCap
	}
	if window <= 0 {
		return 1
	}
	x := float64(elapsed) / float64(window)
	if x > 1 {
		return 1
	}
	if x < 0 {
		return 0
	}
	return x
}

// easeOutCubic is the grow-in easing: fast at onset, settling to full size.
func easeOutCubic(x float64) float64 {
	return 1 - math.Pow(1-x, 3)
}

func annotate(e domain.HazardEvent, enriched Enriched, now, start, end time.Time) *geojson.Feature {
	f := annotateBase(e, enriched)
	if enriched.WaveRadiusKm > 0 {
		f.SetProperty("wave_radius_km", enriched.WaveRadiusKm)
	}
	if e.Type == domain.Hurricane && f.Geometry != nil && f.Geometry.Type == geojson.GeometryLineString {
		f.Geometry = trimLine(f.Geometry, now, start, end)
	}
	return f
}

func annotateBase(e domain.HazardEvent, enriched Enriched) *geojson.Feature {
	f := e.Feature()
	f.SetProperty("phase", string(enriched.Phase))
	f.SetProperty("opacity", enriched.Opacity)
	f.SetProperty("expansion", enriched.Expansion)
	return f
}

// trimLine returns a copy of a track LineString cut to the first
// ceil(progress × pointCount) points, keyed purely on the elapsed/duration
// ratio. At onset exactly one point shows; at the end the full track.
func trimLine(g *geojson.Geometry, now, start, end time.Time) *geojson.Geometry {
	line := g.LineString
	n := len(line)
	if n == 0 {
		return g
	}
	duration := end.Sub(start)
	progress := 1.0
	if duration > 0 {
		progress = float64(now.Sub(start)) / float64(duration)
	}
	if progress > 1 {
		progress = 1
	}
	keep := int(math.Ceil(progress * float64(n)))
	if keep < 1 {
		keep = 1
	}
	if keep > n {
		keep = n
	}
	return geojson.NewLineStringGeometry(line[:keep])
}
