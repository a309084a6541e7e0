package animation

import (
	"sort"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
)

// progressive draws a growing track: the sorted prefix of events up to the
// cursor, with the newest highlighted as current and the rest as past.
type progressive struct {
	cfg      Config
	events   []domain.HazardEvent // sorted by time, unparseable dropped
	timeline Timeline
}

func newProgressive(cfg Config, events []domain.HazardEvent) *progressive {
	sorted := sortedByTime(events)
	// A track with an unplaceable point draws wrong everywhere after it,
	// so progressive keeps only parseable times.
	valid := sorted[:0:0]
	for _, e := range sorted {
		if e.TimeValid {
			valid = append(valid, e)
		}
	}
	return &progressive{
		cfg:      cfg,
		events:   valid,
		timeline: BuildBucketed(valid, cfg.Granularity),
	}
}

func (m *progressive) Kind() ModeKind     { return ModeProgressive }
func (m *progressive) Timeline() Timeline { return m.timeline }

func (m *progressive) Compute(ts time.Time) DisplayState {
	n := sort.Search(len(m.events), func(i int) bool { return m.events[i].Time.After(ts) })
	state := &TrackState{
		Track: make([]*geojson.Feature, 0, n),
		Past:  make([]*geojson.Feature, 0, n),
	}
	for i, e := range m.events[:n] {
		f := e.Feature()
		age := ts.Sub(e.Time)
		if age >= m.cfg.Window {
			// Points that have scrolled out of the rolling window stay on
			// the track but carry no freshness.
			f.SetProperty("recency", 0.0)
		} else {
			f.SetProperty("recency", lifecycle.Recency(age, m.cfg.Window))
		}
		state.Track = append(state.Track, f)
		if i == n-1 {
			state.Current = f
		} else {
			state.Past = append(state.Past, f)
		}
	}
	return DisplayState{Timestamp: ts, Track: state}
}
