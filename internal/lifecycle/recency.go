package lifecycle

import "time"

// FlashFraction is the leading share of the rolling window during which a
// freshly arrived event is overdriven above full intensity.
const FlashFraction = 0.1

// FlashPeak is the recency value at the instant an event appears. Values
// above 1.0 let renderers draw a brief arrival flash before settling.
const FlashPeak = 1.5

// Recency maps an event's age within a rolling window to a 0.0–1.5 visual
// freshness scalar:
//
//	age < 0          → 1.5 (event is ahead of the cursor: full flash)
//	first 10% of the window ramps 1.5 → 1.0
//	remaining 90% fades linearly 1.0 → 0.0
//	age ≥ window     → 0.0
func Recency(age, window time.Duration) float64 {
	if age < 0 {
		return FlashPeak
	}
	if window <= 0 || age >= window {
		return 0
	}
	flash := time.Duration(float64(window) * FlashFraction)
	if age < flash {
		return FlashPeak - (FlashPeak-1.0)*float64(age)/float64(flash)
	}
	return 1.0 - float64(age-flash)/float64(window-flash)
}
