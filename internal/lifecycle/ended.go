package lifecycle

import (
	"time"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// InactivityMultiple is how many expected update intervals may pass without
// a new observation before a continuous hazard is considered over. There is
// no physical justification for 4; it is a display policy tuned against real
// advisory feeds, kept as a variable so deployments can adjust it.
var InactivityMultiple = 4.0

// Ended reports whether an event should be labeled as over at the given
// moment. Instantaneous hazards (earthquake, volcano, tornado, tsunami)
// never end: they happened, they do not go stale. Continuous hazards end at
// their explicit end time when the dataset carries one, otherwise when the
// elapsed time since the last observation exceeds InactivityMultiple times
// the expected update cadence for the type.
func Ended(e domain.HazardEvent, now time.Time, granularity time.Duration) bool {
	if e.Type.Instantaneous() {
		return false
	}
	if e.HasEnd() {
		return now.After(e.EndTime)
	}
	if !e.TimeValid {
		return false
	}
	threshold := time.Duration(InactivityMultiple * float64(e.Type.UpdateInterval(granularity)))
	return now.Sub(e.Time) > threshold
}
