// Package lifecycle decides, for an arbitrary moment on the animation clock,
// whether a hazard event is visible and how strongly: onset, active phase,
// fade-out, flash-on-arrival recency, inactivity detection, and per-hazard
// physical approximations (aftershock windows, wave-front growth, track
// progress).
//
// All propagation models here are calibrated visual approximations, not
// physics. The one literature-derived formula is the Gardner–Knopoff
// aftershock window (Gardner & Knopoff 1974), used both for sequence display
// horizons and as the magnitude-scaled "expansion days" of an earthquake's
// visual lifetime.
//
// Functions in this package are pure over their inputs: they never mutate
// the source events, only return enriched copies.
package lifecycle
