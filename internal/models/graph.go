package models

// GraphData is a snapshot of vertices and edges in insertion order.
type GraphData struct {
	Vertices []VertexData `json:"vertices"`
	Edges    []EdgeData   `json:"edges"`
}

// IsEmpty reports whether the snapshot has neither vertices nor edges.
func (g GraphData) IsEmpty() bool {
	return len(g.Vertices) == 0 && len(g.Edges) == 0
}

// Merge appends other to g, skipping vertices and edges whose id is already present.
func (g *GraphData) Merge(other GraphData) {
	seenV := make(map[int]struct{}, len(g.Vertices))
	for _, v := range g.Vertices {
		seenV[v.ID] = struct{}{}
	}
	for _, v := range other.Vertices {
		if _, ok := seenV[v.ID]; ok {
			continue
		}
		seenV[v.ID] = struct{}{}
		g.Vertices = append(g.Vertices, v)
	}

	seenE := make(map[int]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		seenE[e.ID] = struct{}{}
	}
	for _, e := range other.Edges {
		if _, ok := seenE[e.ID]; ok {
			continue
		}
		seenE[e.ID] = struct{}{}
		g.Edges = append(g.Edges, e)
	}
}
