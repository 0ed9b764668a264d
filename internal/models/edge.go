package models

// EdgeHighlight is the visual emphasis of an edge.
type EdgeHighlight string

// Edge highlights.
const (
	HighlightNone     EdgeHighlight = "none"
	HighlightInferred EdgeHighlight = "inferred"
)

// EdgeDirection says which side of an incomplete edge is already known.
type EdgeDirection string

// Edge directions, relative to the known vertex.
const (
	DirectionOutgoing EdgeDirection = "outgoing"
	DirectionIncoming EdgeDirection = "incoming"
)

// EdgeData is a fully resolved edge between two known vertices.
type EdgeData struct {
	ID        int           `json:"id"`
	Source    int           `json:"source"`
	Target    int           `json:"target"`
	Label     string        `json:"label"`
	Highlight EdgeHighlight `json:"highlight"`
}

// IncompleteEdgeData is an edge known only from one endpoint. The other endpoint
// is identified by whatever key the edge is filed under until it appears.
type IncompleteEdgeData struct {
	ID        int           `json:"id"`
	VertexID  int           `json:"vertex_id"`
	Direction EdgeDirection `json:"direction"`
	Label     string        `json:"label"`
	Highlight EdgeHighlight `json:"highlight"`
}

// Resolve completes the edge once the missing endpoint has the given id.
// Outgoing edges start at the known vertex; incoming edges end at it.
func (e IncompleteEdgeData) Resolve(otherID int) EdgeData {
	out := EdgeData{ID: e.ID, Label: e.Label, Highlight: e.Highlight}
	if e.Direction == DirectionIncoming {
		out.Source, out.Target = otherID, e.VertexID
	} else {
		out.Source, out.Target = e.VertexID, otherID
	}
	return out
}
