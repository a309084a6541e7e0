// Package render defines the renderer capability the animation engine draws
// through, and a name-keyed registry so sessions can resolve a renderer from
// configuration the way the map UI resolves its layer drivers.
package render

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Options carries presentation hints alongside a render call.
type Options struct {
	Label  string
	Center []float64 // lon, lat
	Zoom   float64
	Fade   bool
}

// Renderer is the injected draw capability. Render replaces the layer's
// content wholesale; Update patches properties of what is already drawn
// (the wave clock uses it for radius-only writes); Clear removes the layer.
type Renderer interface {
	Render(data any, label string, opts Options)
	Update(data any, opts Options)
	Clear()
}

// Registry resolves renderers by name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds or replaces a named renderer.
func (r *Registry) Register(name string, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[name] = renderer
}

// Lookup returns the renderer registered under name.
func (r *Registry) Lookup(name string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[name]
	return renderer, ok
}

// Frame is one published render output, as delivered to frame sinks
// (the websocket hub, test recorders).
type Frame struct {
	Kind  string    `json:"kind"` // "render", "update", "clear"
	Label string    `json:"label,omitempty"`
	Data  any       `json:"data,omitempty"`
	At    time.Time `json:"at"`
}

// Sink consumes published frames.
type Sink interface {
	Publish(Frame)
}

// Broadcast adapts a Sink into a Renderer, timestamping each call. The
// orchestrator registers one per output channel so the engine never knows
// whether it is drawing to a map layer or a websocket stream.
type Broadcast struct {
	sink  Sink
	clock func() time.Time
}

// NewBroadcast creates a broadcast renderer. now defaults to time.Now.
func NewBroadcast(sink Sink, now func() time.Time) *Broadcast {
	if now == nil {
		now = time.Now
	}
	return &Broadcast{sink: sink, clock: now}
}

func (b *Broadcast) Render(data any, label string, _ Options) {
	b.sink.Publish(Frame{Kind: "render", Label: label, Data: data, At: b.clock()})
}

func (b *Broadcast) Update(data any, _ Options) {
	b.sink.Publish(Frame{Kind: "update", Data: data, At: b.clock()})
}

func (b *Broadcast) Clear() {
	b.sink.Publish(Frame{Kind: "clear", At: b.clock()})
}

// Log is a debug renderer that writes structured log lines instead of
// drawing. Useful headless and in local development.
type Log struct {
	Logger *slog.Logger
}

func (l *Log) Render(data any, label string, _ Options) {
	l.Logger.Debug("render", "label", label, "data_type", fmt.Sprintf("%T", data))
}

func (l *Log) Update(data any, _ Options) {
	l.Logger.Debug("update", "data_type", fmt.Sprintf("%T", data))
}

func (l *Log) Clear() {
	l.Logger.Debug("clear")
}
