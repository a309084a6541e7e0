// Package animation owns the time-synchronized playback engine: one active
// session at a time, four mutually exclusive mode algorithms each mapping a
// timestamp to a display state, discrete timelines bucketed from event
// times, and a continuous wave clock that interpolates wave-front growth
// between ticks.
//
// Two progress sources drive rendering and are reconciled, never raced: the
// cursor's discrete ticks trigger full display-state renders, while the wave
// clock's frame-rate loop patches only the wave-front radius. The wave clock
// re-derives its reference point on every seek, so the two can interleave
// freely without structural conflicts.
package animation
