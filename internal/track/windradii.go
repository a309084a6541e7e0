package track

import (
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

const (
	samplesPerCircle = 36
	nmToKm           = 1.852
	kmPerDegreeLat   = 111.32
)

// Thresholds are the NHC advisory wind-extent thresholds in knots, drawn
// strongest last so the smaller polygons stack on top.
var Thresholds = []int{34, 50, 64}

// WindPolygon builds the quadrant wind-extent polygon for one threshold
// around a position. Each of the 36 samples takes its radius from the
// quadrant its bearing falls in, so the shape is four stitched arcs rather
// than a circle. Nil when the position has no extent at this threshold.
func WindPolygon(p domain.TrackPosition, thresholdKt int) *geojson.Feature {
	radii, ok := p.WindRadii[thresholdKt]
	if !ok || radii.IsZero() {
		return nil
	}

	ring := make([][]float64, 0, samplesPerCircle+1)
	// cos(lat) vanishes at the poles; clamp so the offsets stay finite.
	lat := math.Max(-89.9, math.Min(89.9, p.Lat))
	lonScale := kmPerDegreeLat * math.Cos(lat*math.Pi/180)
	for i := 0; i < samplesPerCircle; i++ {
		bearing := float64(i) * 360 / samplesPerCircle
		km := quadrantRadiusNm(radii, bearing) * nmToKm
		rad := bearing * math.Pi / 180
		// Bearing is compass-style: 0° north, 90° east.
		dLat := km * math.Cos(rad) / kmPerDegreeLat
		dLon := km * math.Sin(rad) / lonScale
		ring = append(ring, []float64{p.Lon + dLon, p.Lat + dLat})
	}
	ring = append(ring, ring[0])

	f := geojson.NewPolygonFeature([][][]float64{ring})
	f.SetProperty("wind_threshold_kt", thresholdKt)
	return f
}

// WindPolygons returns the polygons for every threshold the position
// carries, weakest first.
func WindPolygons(p domain.TrackPosition) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(Thresholds))
	for _, kt := range Thresholds {
		if f := WindPolygon(p, kt); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// quadrantRadiusNm selects the advisory radius for a compass bearing:
// [0,90) NE, [90,180) SE, [180,270) SW, [270,360) NW.
func quadrantRadiusNm(r domain.QuadrantRadii, bearing float64) float64 {
	switch {
	case bearing < 90:
		return r.NE
	case bearing < 180:
		return r.SE
	case bearing < 270:
		return r.SW
	default:
		return r.NW
	}
}
