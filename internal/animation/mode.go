package animation

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// Mode is one variant of the playback algorithm. Constructors do all the
// per-dataset preparation (sorting, bucketing, source detection) so Compute
// is cheap enough to call on every tick.
type Mode interface {
	Kind() ModeKind
	Timeline() Timeline
	Compute(ts time.Time) DisplayState
}

// newMode builds the mode named by the config. Events are never mutated;
// each mode keeps its own sorted view.
func newMode(cfg Config, events []domain.HazardEvent, logger *slog.Logger) (Mode, error) {
	switch cfg.Mode {
	case ModeAccumulative:
		return newAccumulative(cfg, events), nil
	case ModeProgressive:
		return newProgressive(cfg, events), nil
	case ModePolygon:
		return newPolygon(cfg, events), nil
	case ModeRadial:
		return newRadial(cfg, events, logger), nil
	}
	return nil, fmt.Errorf("unknown animation mode %q", cfg.Mode)
}

// sortedByTime returns a copy of events ordered by time, parseable times
// first.
func sortedByTime(events []domain.HazardEvent) []domain.HazardEvent {
	out := make([]domain.HazardEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimeValid != out[j].TimeValid {
			return out[i].TimeValid
		}
		return out[i].Time.Before(out[j].Time)
	})
	return out
}
