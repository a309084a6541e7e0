package domain

import (
	"time"

	geojson "github.com/paulmach/go.geojson"
)

// HazardType identifies the kind of natural-hazard event.
type HazardType string

const (
	Earthquake HazardType = "earthquake"
	Volcano    HazardType = "volcano"
	Tsunami    HazardType = "tsunami"
	Hurricane  HazardType = "hurricane"
	Tornado    HazardType = "tornado"
	Wildfire   HazardType = "wildfire"
	Flood      HazardType = "flood"
)

// Instantaneous reports whether events of this type occur at a point in time
// rather than persisting through repeated observations. Instantaneous events
// never go "inactive"; there is no update stream to fall behind on.
func (t HazardType) Instantaneous() bool {
	switch t {
	case Earthquake, Volcano, Tornado, Tsunami:
		return true
	}
	return false
}

// WaveCapable reports whether events of this type propagate an expanding
// wave front (seismic shaking, ash dispersal, tsunami waves).
func (t HazardType) WaveCapable() bool {
	switch t {
	case Earthquake, Volcano, Tsunami:
		return true
	}
	return false
}

// UpdateInterval returns the expected cadence of new observations for a
// continuous hazard. Hurricanes follow the 6-hourly NHC advisory cycle;
// fire perimeters and flood extents are mapped daily. Everything else is
// assumed to update at the animation granularity.
func (t HazardType) UpdateInterval(granularity time.Duration) time.Duration {
	switch t {
	case Hurricane:
		return 6 * time.Hour
	case Wildfire, Flood:
		return 24 * time.Hour
	}
	return granularity
}

// Valid reports whether t is one of the known hazard types.
func (t HazardType) Valid() bool {
	switch t {
	case Earthquake, Volcano, Tsunami, Hurricane, Tornado, Wildfire, Flood:
		return true
	}
	return false
}

// HazardEvent is the canonical normalized record. Geometry and Properties are
// shared with the caller's dataset; code that annotates an event must work on
// a copy (see Feature) rather than writing through these references.
type HazardEvent struct {
	ID         string
	Type       HazardType
	Geometry   *geojson.Geometry
	Properties map[string]interface{}

	Time      time.Time
	EndTime   time.Time // zero when the dataset carries no explicit end
	TimeValid bool      // false when the time field failed to parse

	// Radial-dataset fields: the single origin record and, on all others,
	// the great-circle distance from it.
	IsSource   bool
	DistanceKm float64
}

// HasEnd reports whether the event carries an explicit end time.
func (e HazardEvent) HasEnd() bool { return !e.EndTime.IsZero() }

// Coordinates returns the representative lon/lat of the event: the point
// itself for point geometries, the first vertex otherwise.
func (e HazardEvent) Coordinates() (lon, lat float64, ok bool) {
	g := e.Geometry
	if g == nil {
		return 0, 0, false
	}
	switch g.Type {
	case geojson.GeometryPoint:
		if len(g.Point) >= 2 {
			return g.Point[0], g.Point[1], true
		}
	case geojson.GeometryLineString:
		if len(g.LineString) > 0 && len(g.LineString[0]) >= 2 {
			return g.LineString[0][0], g.LineString[0][1], true
		}
	case geojson.GeometryPolygon:
		if len(g.Polygon) > 0 && len(g.Polygon[0]) > 0 && len(g.Polygon[0][0]) >= 2 {
			return g.Polygon[0][0][0], g.Polygon[0][0][1], true
		}
	}
	return 0, 0, false
}

// Magnitude returns the hazard-specific intensity: Richter magnitude, VEI,
// Saffir-Simpson category, EF rating, or burned area, depending on which
// property the dataset carries. Zero when absent.
func (e HazardEvent) Magnitude() float64 {
	for _, key := range []string{"mag", "magnitude", "vei", "category", "ef_scale", "area_km2"} {
		if v, ok := propFloat(e.Properties, key); ok {
			return v
		}
	}
	return 0
}

// PropFloat looks up a numeric property, accepting float64, int and
// numeric-string encodings.
func (e HazardEvent) PropFloat(key string) (float64, bool) {
	return propFloat(e.Properties, key)
}

// Feature converts the event back into a GeoJSON feature with a fresh
// property map, so annotations never leak into the source dataset.
func (e HazardEvent) Feature() *geojson.Feature {
	f := geojson.NewFeature(e.Geometry)
	f.ID = e.ID
	f.Properties = make(map[string]interface{}, len(e.Properties)+4)
	for k, v := range e.Properties {
		f.Properties[k] = v
	}
	f.Properties["event_type"] = string(e.Type)
	if e.TimeValid {
		f.Properties["event_time"] = e.Time.UTC().Format(time.RFC3339)
	}
	return f
}

// QuadrantRadii holds wind-extent radii in nautical miles for the four
// quadrants of a storm, NHC advisory style.
type QuadrantRadii struct {
	NE float64
	SE float64
	SW float64
	NW float64
}

// IsZero reports whether no quadrant has any extent.
func (q QuadrantRadii) IsZero() bool {
	return q.NE == 0 && q.SE == 0 && q.SW == 0 && q.NW == 0
}

// TrackPosition is one fix along a storm track: the flat record shape used
// by best-track and advisory data.
type TrackPosition struct {
	Lat         float64               `json:"lat"`
	Lon         float64               `json:"lon"`
	Time        time.Time             `json:"time"`
	WindSpeedKt float64               `json:"wind_speed_kt"`
	PressureMb  float64               `json:"pressure_mb"`
	Category    string                `json:"category,omitempty"`
	WindRadii   map[int]QuadrantRadii `json:"wind_radii,omitempty"` // keyed by threshold knots: 34, 50, 64
}
