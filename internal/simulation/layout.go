package simulation

import (
	"strconv"
	"sync"

	"github.com/graphstudio/studio/internal/models"
)

// Layout parameters for query result graphs.
const (
	collideRadius          = 80
	initialCharge          = -100
	axisStrength           = 0.05
	hyperedgeCollideRadius = 40
	linkDistance           = 90
	linkStrength           = 0.5
	chargePerEdge          = -600
	bandStrength           = 0.35
	layoutAlphaMin         = 0.01
)

// VertexPosition is a vertex's position in a frame.
type VertexPosition struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// EdgePosition is an edge's endpoints in a frame. Band members also carry the
// position of their hyperedge node, through which the edge is drawn.
type EdgePosition struct {
	ID       int      `json:"id"`
	Source   int      `json:"source"`
	Target   int      `json:"target"`
	SourceX  float64  `json:"sx"`
	SourceY  float64  `json:"sy"`
	TargetX  float64  `json:"tx"`
	TargetY  float64  `json:"ty"`
	ViaX     *float64 `json:"vx,omitempty"`
	ViaY     *float64 `json:"vy,omitempty"`
	Label    string   `json:"label"`
	Inferred bool     `json:"inferred,omitempty"`
}

// Frame is a snapshot of every position in the layout.
type Frame struct {
	Tick     int64            `json:"tick"`
	Alpha    float64          `json:"alpha"`
	Vertices []VertexPosition `json:"vertices"`
	Edges    []EdgePosition   `json:"edges"`
}

type endpoints struct{ a, b int }

func bandOf(e models.EdgeData) endpoints {
	if e.Source < e.Target {
		return endpoints{e.Source, e.Target}
	}
	return endpoints{e.Target, e.Source}
}

// hyperedge is the extra node that bends one member of an edge band.
type hyperedge struct {
	node   *Node
	edge   models.EdgeData
	offset float64
}

// Layout is the force layout for a query result graph. Parallel edges between
// the same pair of vertices form a band; each member gets a hyperedge node with
// a negative id that is pulled towards the midpoint of its edge.
// Layout is safe for concurrent use.
type Layout struct {
	mu   sync.Mutex
	sim  *Simulation
	seed uint64
	tick int64

	vertices    map[int]models.VertexData
	vertexNodes []*Node
	edges       []models.EdgeData
	edgeIDs     map[int]models.EdgeData
	bands       map[endpoints][]int
	hyperedges  map[int]*hyperedge
	hyperNodes  []*Node
	nextHyperID int
}

// NewLayout creates an initialised, empty layout.
func NewLayout(seed uint64) *Layout {
	l := &Layout{seed: seed}
	l.init()
	return l
}

func (l *Layout) init() {
	l.sim = New(l.seed)
	l.tick = 0
	l.vertices = make(map[int]models.VertexData)
	l.vertexNodes = nil
	l.edges = nil
	l.edgeIDs = make(map[int]models.EdgeData)
	l.bands = make(map[endpoints][]int)
	l.hyperedges = make(map[int]*hyperedge)
	l.hyperNodes = nil
	l.nextHyperID = -1

	vertices := func() []*Node { return l.vertexNodes }
	l.sim.SetForce("center", &CenterForce{Nodes: l.sim.Nodes, Strength: 1})
	l.sim.SetForce("collide", &CollideForce{Nodes: vertices, Radius: collideRadius, Strength: 1})
	l.sim.SetForce("charge", NewManyBodyForce(vertices, initialCharge))
	l.sim.SetForce("x", &PositionForce{Nodes: vertices, Axis: AxisX, Target: Constant(0), Strength: axisStrength})
	l.sim.SetForce("y", &PositionForce{Nodes: vertices, Axis: AxisY, Target: Constant(0), Strength: axisStrength})
	l.sim.SetForce("hyperedgeCollide", &CollideForce{
		Nodes:    func() []*Node { return l.hyperNodes },
		Radius:   hyperedgeCollideRadius,
		Strength: 1,
	})
	l.sim.SetAlpha(1)
	l.sim.SetAlphaTarget(0)
	l.sim.SetAlphaMin(layoutAlphaMin)
}

// Clear removes everything and restores the initial forces and temperature.
func (l *Layout) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.init()
}

// HasVertex reports whether the vertex id is in the layout.
func (l *Layout) HasVertex(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.vertices[id]
	return ok
}

// HasEdge reports whether the edge id is in the layout.
func (l *Layout) HasEdge(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.edgeIDs[id]
	return ok
}

// AddVertices adds vertices that are not yet in the layout and returns them.
func (l *Layout) AddVertices(vs []models.VertexData) []models.VertexData {
	l.mu.Lock()
	defer l.mu.Unlock()

	specs := make([]NodeSpec, 0, len(vs))
	added := make([]models.VertexData, 0, len(vs))
	for _, v := range vs {
		if _, ok := l.vertices[v.ID]; ok {
			continue
		}
		l.vertices[v.ID] = v
		specs = append(specs, NodeSpec{ID: v.ID})
		added = append(added, v)
	}
	l.vertexNodes = append(l.vertexNodes, l.sim.AddNodes(specs)...)
	return added
}

// AddEdges adds edges that are not yet in the layout and whose endpoints are
// both present, then rebuilds the link force and rescales the charge.
// It returns the edges added.
func (l *Layout) AddEdges(es []models.EdgeData) []models.EdgeData {
	l.mu.Lock()
	defer l.mu.Unlock()

	added := make([]models.EdgeData, 0, len(es))
	for _, e := range es {
		if _, ok := l.edgeIDs[e.ID]; ok {
			continue
		}
		if _, ok := l.sim.Node(e.Source); !ok {
			continue
		}
		if _, ok := l.sim.Node(e.Target); !ok {
			continue
		}
		l.edgeIDs[e.ID] = e
		l.edges = append(l.edges, e)
		added = append(added, e)
	}
	if len(added) == 0 {
		return added
	}

	links := make([]Link, 0, len(l.edges))
	for _, e := range l.edges {
		src, _ := l.sim.Node(e.Source)
		dst, _ := l.sim.Node(e.Target)
		links = append(links, Link{Source: src, Target: dst})
	}
	vertices := func() []*Node { return l.vertexNodes }
	l.sim.SetForce("link", NewLinkForce(links, linkDistance, linkStrength))
	l.sim.SetForce("charge", NewManyBodyForce(vertices,
		chargePerEdge*float64(len(l.edges))/float64(len(l.vertices)+1)))

	for _, e := range added {
		k := bandOf(e)
		l.bands[k] = append(l.bands[k], e.ID)
		if len(l.bands[k]) > 1 {
			for _, id := range l.bands[k] {
				l.addBandMember(l.edgeByID(id))
			}
		}
	}
	return added
}

func (l *Layout) edgeByID(id int) models.EdgeData {
	return l.edgeIDs[id]
}

// addBandMember gives an edge its hyperedge node. Repeated calls are no-ops.
func (l *Layout) addBandMember(e models.EdgeData) {
	if _, ok := l.hyperedges[e.ID]; ok {
		return
	}
	mx, my := l.midpoint(e)
	id := l.nextHyperID
	l.nextHyperID--

	nodes := l.sim.AddNodes([]NodeSpec{{ID: id, X: mx, Y: my, HasPosition: true}})
	h := &hyperedge{node: nodes[0], edge: e, offset: l.sim.Jiggle()}
	l.hyperedges[e.ID] = h
	l.hyperNodes = append(l.hyperNodes, h.node)

	name := strconv.Itoa(id)
	self := func() []*Node { return []*Node{h.node} }
	l.sim.SetForce("x_"+name, &PositionForce{
		Nodes:    self,
		Axis:     AxisX,
		Target:   func(*Node) float64 { x, _ := l.midpoint(h.edge); return x + h.offset },
		Strength: bandStrength,
	})
	l.sim.SetForce("y_"+name, &PositionForce{
		Nodes:    self,
		Axis:     AxisY,
		Target:   func(*Node) float64 { _, y := l.midpoint(h.edge); return y + h.offset },
		Strength: bandStrength,
	})
}

func (l *Layout) midpoint(e models.EdgeData) (float64, float64) {
	a, _ := l.sim.Node(e.Source)
	b, _ := l.sim.Node(e.Target)
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2
}

// Tick advances the layout one step.
func (l *Layout) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sim.Tick()
	l.tick++
}

// Alpha returns the current temperature.
func (l *Layout) Alpha() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Alpha()
}

// Reheat raises alpha to at least a.
func (l *Layout) Reheat(a float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sim.Alpha() < a {
		l.sim.SetAlpha(a)
	}
}

// Cooled reports whether the layout has come to rest.
func (l *Layout) Cooled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Cooled()
}

// Empty reports whether the layout has no vertices.
func (l *Layout) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.vertices) == 0
}

// Counts returns the number of vertices, edges and hyperedge nodes.
func (l *Layout) Counts() (vertices, edges, hyperedges int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.vertices), len(l.edges), len(l.hyperNodes)
}

// Graph returns the vertices and edges in the layout, in insertion order.
func (l *Layout) Graph() models.GraphData {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := models.GraphData{
		Vertices: make([]models.VertexData, 0, len(l.vertexNodes)),
		Edges:    append([]models.EdgeData(nil), l.edges...),
	}
	for _, n := range l.vertexNodes {
		g.Vertices = append(g.Vertices, l.vertices[n.ID])
	}
	return g
}

// Frame returns the current positions.
func (l *Layout) Frame() Frame {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := Frame{
		Tick:     l.tick,
		Alpha:    l.sim.Alpha(),
		Vertices: make([]VertexPosition, 0, len(l.vertexNodes)),
		Edges:    make([]EdgePosition, 0, len(l.edges)),
	}
	for _, n := range l.vertexNodes {
		f.Vertices = append(f.Vertices, VertexPosition{ID: n.ID, X: n.X, Y: n.Y})
	}
	for _, e := range l.edges {
		src, _ := l.sim.Node(e.Source)
		dst, _ := l.sim.Node(e.Target)
		p := EdgePosition{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			SourceX:  src.X,
			SourceY:  src.Y,
			TargetX:  dst.X,
			TargetY:  dst.Y,
			Label:    e.Label,
			Inferred: e.Highlight == models.HighlightInferred,
		}
		if h, ok := l.hyperedges[e.ID]; ok {
			x, y := h.node.X, h.node.Y
			p.ViaX, p.ViaY = &x, &y
		}
		f.Edges = append(f.Edges, p)
	}
	return f
}
