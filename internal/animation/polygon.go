package animation

import (
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// polygon shows the exact granularity-aligned bucket at the cursor: a
// discrete snapshot, e.g. the fire perimeter mapped that day.
type polygon struct {
	cfg      Config
	buckets  map[int64][]domain.HazardEvent
	timeline Timeline
}

func newPolygon(cfg Config, events []domain.HazardEvent) *polygon {
	buckets := make(map[int64][]domain.HazardEvent)
	for _, e := range events {
		if !e.TimeValid {
			continue
		}
		b := bucketMs(e.Time, cfg.Granularity)
		buckets[b] = append(buckets[b], e)
	}
	return &polygon{
		cfg:      cfg,
		buckets:  buckets,
		timeline: BuildBucketed(events, cfg.Granularity),
	}
}

func (m *polygon) Kind() ModeKind     { return ModePolygon }
func (m *polygon) Timeline() Timeline { return m.timeline }

func (m *polygon) Compute(ts time.Time) DisplayState {
	fc := geojson.NewFeatureCollection()
	for _, e := range m.buckets[bucketMs(ts, m.cfg.Granularity)] {
		fc.AddFeature(e.Feature())
	}
	return DisplayState{Timestamp: ts, Collection: fc}
}
