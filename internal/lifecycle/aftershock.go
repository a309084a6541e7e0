package lifecycle

import (
	"math"
	"time"
)

// WindowDays returns the Gardner–Knopoff aftershock window in days for a
// mainshock magnitude: 10^(0.5M − 1.5). M6.0 → ~31.6 days, M5.0 → 10 days.
func WindowDays(magnitude float64) float64 {
	return math.Pow(10, 0.5*magnitude-1.5)
}

// Window is WindowDays as a duration.
func Window(magnitude float64) time.Duration {
	return time.Duration(WindowDays(magnitude) * 24 * float64(time.Hour))
}

// DisplayHorizon returns the end of an aftershock sequence's display span:
// the later of the last observed aftershock and mainshock + Gardner–Knopoff
// window, so a sequence that outlives its statistical window stays visible.
func DisplayHorizon(mainshock time.Time, magnitude float64, aftershocks []time.Time) time.Time {
	horizon := mainshock.Add(Window(magnitude))
	for _, ts := range aftershocks {
		if ts.After(horizon) {
			horizon = ts
		}
	}
	return horizon
}

// granularityBuckets are the time-step sizes the UI's time axis supports.
var granularityBuckets = []time.Duration{
	time.Hour,
	2 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
}

// AutoGranularity picks a display granularity for a time span by targeting
// roughly 200 animation steps, snapped to the nearest supported bucket.
func AutoGranularity(span time.Duration) time.Duration {
	if span <= 0 {
		return time.Hour
	}
	const targetSteps = 200
	stepHours := math.Ceil(span.Hours() / targetSteps)
	step := time.Duration(stepHours) * time.Hour

	best := granularityBuckets[0]
	bestDiff := absDuration(step - best)
	for _, b := range granularityBuckets[1:] {
		if d := absDuration(step - b); d < bestDiff {
			best, bestDiff = b, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
