package animation

import (
	"sort"
	"time"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
	"github.com/couchcryptid/hazard-animation-service/internal/lifecycle"
)

// radialSteps is how many evenly spaced frames a radial timeline synthesizes
// between the source time and the arrival horizon.
const radialSteps = 120

// minRadialSpan keeps near-field radial animations watchable: even when the
// farthest observation is minutes away, the timeline spans two hours.
const minRadialSpan = 2 * time.Hour

// radialOverrun extends the horizon past the farthest arrival so the final
// reveal is not the final frame.
const radialOverrun = 1.1

// Timeline is a strictly increasing sequence of animation timestamps.
type Timeline struct {
	steps []time.Time
}

// Len returns the number of steps.
func (t Timeline) Len() int { return len(t.steps) }

// Empty reports whether the timeline has no steps.
func (t Timeline) Empty() bool { return len(t.steps) == 0 }

// At returns step i.
func (t Timeline) At(i int) time.Time { return t.steps[i] }

// Bounds returns the first and last step. Zero times when empty.
func (t Timeline) Bounds() (min, max time.Time) {
	if len(t.steps) == 0 {
		return time.Time{}, time.Time{}
	}
	return t.steps[0], t.steps[len(t.steps)-1]
}

// Nearest returns the index of the step closest to ts by absolute
// difference. Ties break toward the earlier step.
func (t Timeline) Nearest(ts time.Time) int {
	n := len(t.steps)
	i := sort.Search(n, func(j int) bool { return !t.steps[j].Before(ts) })
	if i == 0 {
		return 0
	}
	if i == n {
		return n - 1
	}
	if ts.Sub(t.steps[i-1]) <= t.steps[i].Sub(ts) {
		return i - 1
	}
	return i
}

// BuildBucketed constructs the standard-mode timeline: every event time
// floored to a granularity multiple, sorted and deduplicated. Events whose
// time failed to parse contribute no step.
func BuildBucketed(events []domain.HazardEvent, granularity time.Duration) Timeline {
	if granularity <= 0 {
		return Timeline{}
	}
	seen := make(map[int64]struct{}, len(events))
	steps := make([]time.Time, 0, len(events))
	for _, e := range events {
		if !e.TimeValid {
			continue
		}
		b := bucketMs(e.Time, granularity)
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		steps = append(steps, time.UnixMilli(b).UTC())
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Before(steps[j]) })
	return Timeline{steps: steps}
}

// BuildRadial synthesizes the radial-mode timeline: evenly spaced steps from
// the source time to sourceTime + max(1.1 × travel, 2h), where travel is the
// time for the wave front to reach the farthest observation.
func BuildRadial(sourceTime time.Time, maxDistanceKm float64) Timeline {
	travel := time.Duration(maxDistanceKm / lifecycle.TsunamiWaveSpeedKmh * float64(time.Hour))
	span := time.Duration(float64(travel) * radialOverrun)
	if span < minRadialSpan {
		span = minRadialSpan
	}
	step := span / radialSteps
	steps := make([]time.Time, 0, radialSteps+1)
	for i := 0; i <= radialSteps; i++ {
		steps = append(steps, sourceTime.Add(time.Duration(i)*step))
	}
	return Timeline{steps: steps}
}

// bucketMs floors a time to a granularity multiple in epoch milliseconds.
func bucketMs(ts time.Time, granularity time.Duration) int64 {
	g := granularity.Milliseconds()
	ms := ts.UnixMilli()
	b := ms - (ms % g)
	if ms < 0 && ms%g != 0 {
		b -= g
	}
	return b
}
