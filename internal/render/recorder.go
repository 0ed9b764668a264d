package render

import (
	"sync"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/simulation"
)

// Recorder is a headless surface. It accumulates the graph it was given and
// keeps the latest frame, optionally forwarding events to listeners.
type Recorder struct {
	mu        sync.Mutex
	graph     models.GraphData
	frame     *simulation.Frame
	frames    int64
	destroyed bool

	onAdd   func(vertices []models.VertexData, edges []models.EdgeData)
	onFrame func(f simulation.Frame)
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// OnAdd registers a callback for elements joining the layout.
func OnAdd(fn func(vertices []models.VertexData, edges []models.EdgeData)) RecorderOption {
	return func(r *Recorder) { r.onAdd = fn }
}

// OnFrame registers a callback for every rendered frame.
func OnFrame(fn func(f simulation.Frame)) RecorderOption {
	return func(r *Recorder) { r.onFrame = fn }
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{}
	for _, o := range opts {
		o(r)
	}
	return r
}

// AddNodes implements simulation.Surface.
func (r *Recorder) AddNodes(vertices []models.VertexData, edges []models.EdgeData) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.graph.Vertices = append(r.graph.Vertices, vertices...)
	r.graph.Edges = append(r.graph.Edges, edges...)
	fn := r.onAdd
	r.mu.Unlock()

	if fn != nil {
		fn(vertices, edges)
	}
}

// Render implements simulation.Surface.
func (r *Recorder) Render(f simulation.Frame) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.frame = &f
	r.frames++
	fn := r.onFrame
	r.mu.Unlock()

	if fn != nil {
		fn(f)
	}
}

// Destroy implements simulation.Surface. The recorded graph stays readable.
func (r *Recorder) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed = true
	r.onAdd = nil
	r.onFrame = nil
}

// Snapshot returns a copy of the recorded graph and the latest frame.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{Graph: models.GraphData{
		Vertices: append([]models.VertexData(nil), r.graph.Vertices...),
		Edges:    append([]models.EdgeData(nil), r.graph.Edges...),
	}}
	if r.frame != nil {
		f := *r.frame
		snap.Frame = &f
	}
	return snap
}

// Frames returns the number of frames rendered.
func (r *Recorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Destroyed reports whether Destroy was called.
func (r *Recorder) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}
