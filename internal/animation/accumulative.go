package animation

import (
	"sort"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
)

// accumulative shows every event inside the trailing window at the cursor,
// annotated with recency and an ended flag.
type accumulative struct {
	cfg      Config
	events   []domain.HazardEvent // sorted by time
	timeline Timeline
}

func newAccumulative(cfg Config, events []domain.HazardEvent) *accumulative {
	sorted := sortedByTime(events)
	return &accumulative{
		cfg:      cfg,
		events:   sorted,
		timeline: BuildBucketed(sorted, cfg.Granularity),
	}
}

func (m *accumulative) Kind() ModeKind     { return ModeAccumulative }
func (m *accumulative) Timeline() Timeline { return m.timeline }

func (m *accumulative) Compute(ts time.Time) DisplayState {
	fc := geojson.NewFeatureCollection()
	windowStart := ts.Add(-m.cfg.Window)

	// Events are time-sorted, so the window is a contiguous run starting at
	// the first event not before windowStart.
	first := sort.Search(len(m.events), func(i int) bool {
		return !m.events[i].TimeValid || !m.events[i].Time.Before(windowStart)
	})
	for _, e := range m.events[first:] {
		if !e.TimeValid {
			// Fail open: unparseable times render at full freshness.
			f := e.Feature()
			f.SetProperty("recency", 1.0)
			f.SetProperty("ended", false)
			fc.AddFeature(f)
			continue
		}
		if e.Time.After(ts) {
			// Later events can't appear yet, but unparseable-time events
			// sort after them and still need the fail-open pass.
			continue
		}
		f := e.Feature()
		f.SetProperty("recency", lifecycle.Recency(ts.Sub(e.Time), m.cfg.Window))
		f.SetProperty("ended", lifecycle.Ended(e, ts, m.cfg.Granularity))
		fc.AddFeature(f)
	}
	return DisplayState{Timestamp: ts, Collection: fc}
}
