package animation

import (
	"time"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// ModeKind selects which algorithm maps timestamps to display states.
type ModeKind string

const (
	// ModeAccumulative shows every event inside a trailing window, faded by
	// recency. The default for point-hazard overviews.
	ModeAccumulative ModeKind = "accumulative"

	// ModeProgressive draws a growing track: everything up to the cursor,
	// with the newest position highlighted.
	ModeProgressive ModeKind = "progressive"

	// ModePolygon shows the exact snapshot bucket at the cursor, e.g. the
	// daily fire perimeter.
	ModePolygon ModeKind = "polygon"

	// ModeRadial simulates wave propagation from a single source event,
	// revealing distance-tagged observations as the front reaches them.
	ModeRadial ModeKind = "radial"
)

// Valid reports whether m names a known mode.
func (m ModeKind) Valid() bool {
	switch m {
	case ModeAccumulative, ModeProgressive, ModePolygon, ModeRadial:
		return true
	}
	return false
}

// DefaultPlaybackRate is the wave clock's simulated-seconds-per-wall-second
// multiplier when the config does not set one: one simulated hour per second.
const DefaultPlaybackRate = 3600.0

// Config describes one animation. Immutable once a session starts.
type Config struct {
	ID          string
	Label       string
	Mode        ModeKind
	TimeField   string
	Granularity time.Duration // zero: auto-selected from the event span
	Renderer    string
	Window      time.Duration // rolling-window size; zero: 24h
	Type        domain.HazardType
	UseFade     bool

	// Optional camera hints passed through to the renderer.
	Center []float64
	Zoom   float64

	// PlaybackRate drives the wave clock; zero means DefaultPlaybackRate.
	PlaybackRate float64

	// OnExit runs inside Stop. A panicking callback is recovered and logged
	// so it cannot leave teardown incomplete.
	OnExit func()
}

// withDefaults fills in the zero-valued knobs. Granularity defaults to the
// auto-selected bucket for the dataset's span, computed by the caller.
func (c Config) withDefaults(autoGranularity time.Duration) Config {
	if c.Granularity <= 0 {
		c.Granularity = autoGranularity
	}
	if c.Window <= 0 {
		c.Window = 24 * time.Hour
	}
	if c.PlaybackRate <= 0 {
		c.PlaybackRate = DefaultPlaybackRate
	}
	return c
}
