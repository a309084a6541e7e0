package animation

import (
	"time"

	geojson "github.com/paulmach/go.geojson"
)

// DisplayState is what a mode computes for one timestamp. Exactly one of
// the three payloads is set, matching the mode that produced it.
type DisplayState struct {
	Timestamp  time.Time                  `json:"timestamp"`
	Collection *geojson.FeatureCollection `json:"collection,omitempty"`
	Track      *TrackState                `json:"track,omitempty"`
	Radial     *RadialState               `json:"radial,omitempty"`
}

// TrackState is the progressive-mode payload: the drawn prefix, its newest
// position, and everything before it.
type TrackState struct {
	Track   []*geojson.Feature `json:"track"`
	Current *geojson.Feature   `json:"current,omitempty"`
	Past    []*geojson.Feature `json:"past"`
}

// RadialState is the radial-mode payload: the source event, the runup
// observations the wave front has reached, and the source→runup connection
// lines.
type RadialState struct {
	Source      *geojson.Feature   `json:"source,omitempty"`
	Runups      []*geojson.Feature `json:"runups"`
	Connections []*geojson.Feature `json:"connections"`
	Metadata    RadialMetadata     `json:"metadata"`
}

// RadialMetadata carries the wave-front numbers renderers draw the ring from.
type RadialMetadata struct {
	SourceTime    time.Time `json:"source_time"`
	ElapsedHours  float64   `json:"elapsed_hours"`
	FrontKm       float64   `json:"front_km"`
	MaxDistanceKm float64   `json:"max_distance_km"`
}

// WaveFrame is the wave clock's radius-only update. It deliberately carries
// no features: the clock may never trigger a structural re-render.
type WaveFrame struct {
	FrontKm float64   `json:"front_km"`
	SimTime time.Time `json:"sim_time"`
}

// Empty reports whether the state carries nothing to draw.
func (d DisplayState) Empty() bool {
	switch {
	case d.Collection != nil:
		return len(d.Collection.Features) == 0
	case d.Track != nil:
		return len(d.Track.Track) == 0
	case d.Radial != nil:
		return d.Radial.Source == nil && len(d.Radial.Runups) == 0
	}
	return true
}
