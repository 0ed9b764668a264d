// Package stream buffers graph data produced by a query until the renderer drains it.
package stream

import (
	"sync"
	"time"

	"github.com/graphstudio/studio/internal/models"
)

// Stream accumulates vertices and edges from a producer and hands them to a consumer
// in batches. Once completed, further puts are ignored. The first error recorded
// completes the stream and is returned by every later Drain.
//
// A single mutex guards all state.
type Stream struct {
	mu            sync.Mutex
	vertices      []models.VertexData
	edges         []models.EdgeData
	err           error
	completed     bool
	completedAt   time.Time
	lastDrainedAt time.Time
	totalVertices int
	totalEdges    int
	now           func() time.Time
}

// New creates an empty stream.
func New() *Stream {
	return &Stream{now: time.Now}
}

// PutVertex appends a vertex to the pending buffer.
func (s *Stream) PutVertex(v models.VertexData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return
	}
	s.vertices = append(s.vertices, v)
	s.totalVertices++
}

// PutEdge appends an edge to the pending buffer.
func (s *Stream) PutEdge(e models.EdgeData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return
	}
	s.edges = append(s.edges, e)
	s.totalEdges++
}

// PutError records err as the terminal error and completes the stream.
// Ignored when the stream is already completed.
func (s *Stream) PutError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return
	}
	s.err = err
	s.markCompleted()
}

// Complete marks the stream as finished without error.
func (s *Stream) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return
	}
	s.markCompleted()
}

func (s *Stream) markCompleted() {
	s.completed = true
	s.completedAt = s.now()
}

// Drain returns everything buffered since the previous drain and clears the buffers.
// If an error was recorded, Drain returns it instead and leaves the buffers alone.
func (s *Stream) Drain() (models.GraphData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return models.GraphData{}, s.err
	}

	g := models.GraphData{Vertices: s.vertices, Edges: s.edges}
	s.vertices = nil
	s.edges = nil
	s.lastDrainedAt = s.now()
	return g, nil
}

// IsCompletedAndFullyDrained reports whether the stream finished cleanly and
// nothing remains to drain.
func (s *Stream) IsCompletedAndFullyDrained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.completed && s.err == nil && len(s.vertices) == 0 && len(s.edges) == 0
}

// Completed reports whether the stream has been completed, with or without error.
func (s *Stream) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.completed
}

// Err returns the recorded error, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Pending returns the number of buffered vertices and edges.
func (s *Stream) Pending() (vertices, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.vertices), len(s.edges)
}

// Empty reports whether nothing is buffered.
func (s *Stream) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.vertices) == 0 && len(s.edges) == 0
}

// Stats summarises the stream's lifetime.
type Stats struct {
	Vertices      int
	Edges         int
	Completed     bool
	Failed        bool
	CompletedAt   time.Time
	LastDrainedAt time.Time
}

// Stats returns lifetime totals and timestamps.
func (s *Stream) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Vertices:      s.totalVertices,
		Edges:         s.totalEdges,
		Completed:     s.completed,
		Failed:        s.err != nil,
		CompletedAt:   s.completedAt,
		LastDrainedAt: s.lastDrainedAt,
	}
}
