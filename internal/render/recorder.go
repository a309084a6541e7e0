package render

import "sync"

// Recorder is a Renderer that captures every call for inspection. It exists
// for tests across packages, the same way the metrics package ships a
// testing constructor.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
	clears int
}

// NewRecorder creates an empty recording renderer.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Render(data any, label string, _ Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Kind: "render", Label: label, Data: data})
}

func (r *Recorder) Update(data any, _ Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Kind: "update", Data: data})
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.frames = append(r.frames, Frame{Kind: "clear"})
}

// Frames returns a copy of everything recorded so far.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// RenderCount returns how many full Render calls were recorded.
func (r *Recorder) RenderCount() int {
	return r.countKind("render")
}

// UpdateCount returns how many Update calls were recorded.
func (r *Recorder) UpdateCount() int {
	return r.countKind("update")
}

// ClearCount returns how many Clear calls were recorded.
func (r *Recorder) ClearCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Last returns the most recent frame, or false when nothing was recorded.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

func (r *Recorder) countKind(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.frames {
		if f.Kind == kind {
			n++
		}
	}
	return n
}
