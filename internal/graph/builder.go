// Package graph turns concepts into graph vertices and edges, resolving edges
// whose far endpoint has not been seen yet.
package graph

import (
	"sync"
	"sync/atomic"

	"github.com/graphstudio/studio/internal/models"
)

// Sink receives graph elements as they become complete.
type Sink interface {
	PutVertex(v models.VertexData)
	PutEdge(e models.EdgeData)
}

// Handler is a Sink that can also be told how the producer finished.
type Handler interface {
	Sink
	PutError(err error)
	Complete()
}

// IDGenerator hands out ids starting at 1. Vertices and edges share the sequence.
type IDGenerator struct {
	next atomic.Int64
}

// Next returns the next id.
func (g *IDGenerator) Next() int {
	return int(g.next.Add(1))
}

type edgeKey struct {
	source, target int
	label          string
}

// Builder registers vertices by concept key, emits them to a Sink exactly once,
// and holds edges to unseen concepts until those concepts arrive.
//
// The builder lock is taken before any lock inside the Sink.
type Builder struct {
	mu       sync.Mutex
	sink     Sink
	ids      *IDGenerator
	vertices map[Key]int
	pending  map[Key][]models.IncompleteEdgeData
	edges    map[edgeKey]struct{}
}

// NewBuilder creates a builder emitting to sink.
func NewBuilder(sink Sink) *Builder {
	return &Builder{
		sink:     sink,
		ids:      &IDGenerator{},
		vertices: make(map[Key]int),
		pending:  make(map[Key][]models.IncompleteEdgeData),
		edges:    make(map[edgeKey]struct{}),
	}
}

// PutVertex registers key. On first sight it assigns an id, emits the vertex
// produced by build and resolves every edge that was waiting for key.
// Later calls return the existing id with created false.
func (b *Builder) PutVertex(key Key, build func(id int) models.VertexData) (id int, created bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.vertices[key]; ok {
		return id, false
	}

	id = b.ids.Next()
	v := build(id)
	v.ID = id
	b.vertices[key] = id
	b.sink.PutVertex(v)

	for _, inc := range b.pending[key] {
		b.emitEdge(inc.Resolve(id))
	}
	delete(b.pending, key)

	return id, true
}

// Connect adds an edge between vertexID and the concept identified by other.
// If other is unknown the edge is held until it appears.
func (b *Builder) Connect(vertexID int, other Key, dir models.EdgeDirection, label string, highlight models.EdgeHighlight) {
	b.mu.Lock()
	defer b.mu.Unlock()

	inc := models.IncompleteEdgeData{
		VertexID:  vertexID,
		Direction: dir,
		Label:     label,
		Highlight: highlight,
	}

	if otherID, ok := b.vertices[other]; ok {
		inc.ID = b.ids.Next()
		b.emitEdge(inc.Resolve(otherID))
		return
	}

	for _, p := range b.pending[other] {
		if p.VertexID == vertexID && p.Direction == dir && p.Label == label {
			return
		}
	}
	inc.ID = b.ids.Next()
	b.pending[other] = append(b.pending[other], inc)
}

// Link emits an edge between two known vertices.
func (b *Builder) Link(source, target int, label string, highlight models.EdgeHighlight) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.emitEdge(models.EdgeData{
		ID:        b.ids.Next(),
		Source:    source,
		Target:    target,
		Label:     label,
		Highlight: highlight,
	})
}

// emitEdge drops duplicates of an already emitted source/target/label triple.
func (b *Builder) emitEdge(e models.EdgeData) {
	k := edgeKey{source: e.Source, target: e.Target, label: e.Label}
	if _, ok := b.edges[k]; ok {
		return
	}
	b.edges[k] = struct{}{}
	b.sink.PutEdge(e)
}

// VertexID returns the id registered for key.
func (b *Builder) VertexID(key Key) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.vertices[key]
	return id, ok
}

// PendingEdges returns the number of edges still waiting for an endpoint.
func (b *Builder) PendingEdges() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, edges := range b.pending {
		n += len(edges)
	}
	return n
}

// PendingKeys returns the keys that incomplete edges are waiting on.
func (b *Builder) PendingKeys() []Key {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]Key, 0, len(b.pending))
	for k := range b.pending {
		keys = append(keys, k)
	}
	return keys
}

// Reset forgets all registered vertices and pending edges. Ids keep increasing.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.vertices = make(map[Key]int)
	b.pending = make(map[Key][]models.IncompleteEdgeData)
	b.edges = make(map[edgeKey]struct{})
}
