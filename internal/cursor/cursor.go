// Package cursor models the shared time axis: named time scales, an active
// scale, change listeners, and playback state. Animation sessions register a
// scale and a listener here; the orchestrator drives the cursor from play
// and seek commands.
package cursor

import (
	"sync"
	"time"
)

// PrimaryScaleID is the default scale the axis falls back to when an
// animation's own scale is removed.
const PrimaryScaleID = "primary"

// Scale is one selectable range on the time axis.
type Scale struct {
	ID   string
	Min  time.Time
	Max  time.Time
	Step time.Duration
}

// Listener receives cursor position changes.
type Listener func(ts time.Time)

// TimeCursor is the contract the animation engine consumes. The concrete
// Slider below implements it; UI embeddings provide their own.
type TimeCursor interface {
	AddScale(s Scale)
	SetActiveScale(id string) bool
	RemoveScale(id string)
	HasScale(id string) bool
	AddChangeListener(id string, fn Listener)
	RemoveChangeListener(id string)
	IsPlaying() bool
	EnterEventAnimation(min, max time.Time)
	Show()
	Hide()
}

// Slider is an in-memory TimeCursor. It serializes all state behind one
// mutex but invokes listeners outside it, so a listener may call back into
// the cursor.
type Slider struct {
	mu        sync.Mutex
	scales    map[string]Scale
	active    string
	listeners map[string]Listener
	playing   bool
	visible   bool
	current   time.Time
}

// NewSlider creates a cursor with only the primary scale covering the last
// 30 days.
func NewSlider(now time.Time) *Slider {
	s := &Slider{
		scales:    make(map[string]Scale),
		listeners: make(map[string]Listener),
	}
	s.scales[PrimaryScaleID] = Scale{
		ID:   PrimaryScaleID,
		Min:  now.Add(-30 * 24 * time.Hour),
		Max:  now,
		Step: 24 * time.Hour,
	}
	s.active = PrimaryScaleID
	s.visible = true
	return s
}

func (s *Slider) AddScale(scale Scale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scales[scale.ID] = scale
}

func (s *Slider) SetActiveScale(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scales[id]; !ok {
		return false
	}
	s.active = id
	return true
}

func (s *Slider) RemoveScale(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scales, id)
	if s.active == id {
		s.active = ""
	}
}

func (s *Slider) HasScale(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.scales[id]
	return ok
}

// ActiveScaleID returns the currently selected scale, or "" when the last
// active scale was removed.
func (s *Slider) ActiveScaleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Slider) AddChangeListener(id string, fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[id] = fn
}

func (s *Slider) RemoveChangeListener(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

func (s *Slider) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// EnterEventAnimation focuses the axis on an event's span. The slider keeps
// only the bounds; a UI cursor would also re-render its tick marks.
func (s *Slider) EnterEventAnimation(min, max time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = min
	s.visible = true
}

func (s *Slider) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
}

func (s *Slider) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

// Visible reports whether the axis is shown.
func (s *Slider) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Play starts playback.
func (s *Slider) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
}

// Pause stops playback.
func (s *Slider) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// Current returns the cursor position.
func (s *Slider) Current() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetTime moves the cursor and notifies every listener. Listeners run
// outside the lock in registration-independent order.
func (s *Slider) SetTime(ts time.Time) {
	s.mu.Lock()
	s.current = ts
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ts)
	}
}
