package simulation

import "math"

// Selector returns the nodes a force acts on at the time it is applied.
type Selector func() []*Node

// CenterForce translates the selected nodes so their mean sits at (X, Y).
type CenterForce struct {
	Nodes    Selector
	X, Y     float64
	Strength float64
}

// Apply implements Force.
func (f *CenterForce) Apply(_ *Simulation, _ float64) {
	nodes := f.Nodes()
	if len(nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range nodes {
		sx += n.X
		sy += n.Y
	}
	sx = (sx/float64(len(nodes)) - f.X) * f.Strength
	sy = (sy/float64(len(nodes)) - f.Y) * f.Strength
	for _, n := range nodes {
		n.X -= sx
		n.Y -= sy
	}
}

// PositionForce pulls each selected node towards a target coordinate on one axis.
type PositionForce struct {
	Nodes    Selector
	Axis     Axis
	Target   func(n *Node) float64
	Strength float64
}

// Axis selects x or y for a PositionForce.
type Axis uint8

// Axes.
const (
	AxisX Axis = iota
	AxisY
)

// Apply implements Force.
func (f *PositionForce) Apply(_ *Simulation, alpha float64) {
	for _, n := range f.Nodes() {
		t := f.Target(n)
		if f.Axis == AxisX {
			n.VX += (t - n.X) * f.Strength * alpha
		} else {
			n.VY += (t - n.Y) * f.Strength * alpha
		}
	}
}

// Constant returns a target function that always yields v.
func Constant(v float64) func(*Node) float64 {
	return func(*Node) float64 { return v }
}

// Link is a spring between two nodes.
type Link struct {
	Source, Target *Node
	bias           float64
}

// LinkForce holds linked nodes at a fixed distance.
type LinkForce struct {
	Links    []Link
	Distance float64
	Strength float64
}

// NewLinkForce builds a link force, weighting each end by node degree so
// that poorly connected nodes move more.
func NewLinkForce(links []Link, distance, strength float64) *LinkForce {
	degree := make(map[*Node]int, len(links)*2)
	for _, l := range links {
		degree[l.Source]++
		degree[l.Target]++
	}
	out := make([]Link, len(links))
	for i, l := range links {
		ds, dt := float64(degree[l.Source]), float64(degree[l.Target])
		out[i] = Link{Source: l.Source, Target: l.Target, bias: ds / (ds + dt)}
	}
	return &LinkForce{Links: out, Distance: distance, Strength: strength}
}

// Apply implements Force.
func (f *LinkForce) Apply(s *Simulation, alpha float64) {
	for _, l := range f.Links {
		src, dst := l.Source, l.Target
		x := dst.X + dst.VX - src.X - src.VX
		if x == 0 {
			x = s.Jiggle()
		}
		y := dst.Y + dst.VY - src.Y - src.VY
		if y == 0 {
			y = s.Jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - f.Distance) / d * alpha * f.Strength
		x *= k
		y *= k
		dst.VX -= x * l.bias
		dst.VY -= y * l.bias
		src.VX += x * (1 - l.bias)
		src.VY += y * (1 - l.bias)
	}
}

// CollideForce keeps selected nodes at least 2*Radius apart.
type CollideForce struct {
	Nodes    Selector
	Radius   float64
	Strength float64
}

// Apply implements Force. Candidate pairs come from a uniform grid with cells
// one diameter wide, so only neighbouring cells are compared.
func (f *CollideForce) Apply(s *Simulation, _ float64) {
	nodes := f.Nodes()
	if len(nodes) < 2 || f.Radius <= 0 {
		return
	}
	cell := 2 * f.Radius
	type cellKey struct{ x, y int }
	grid := make(map[cellKey][]*Node, len(nodes))
	keyOf := func(n *Node) cellKey {
		return cellKey{int(math.Floor((n.X + n.VX) / cell)), int(math.Floor((n.Y + n.VY) / cell))}
	}
	for _, n := range nodes {
		k := keyOf(n)
		grid[k] = append(grid[k], n)
	}

	r := 2 * f.Radius
	for _, a := range nodes {
		k := keyOf(a)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, b := range grid[cellKey{k.x + dx, k.y + dy}] {
					if b.Index <= a.Index {
						continue
					}
					x := a.X + a.VX - b.X - b.VX
					y := a.Y + a.VY - b.Y - b.VY
					l := x*x + y*y
					if l >= r*r {
						continue
					}
					if x == 0 {
						x = s.Jiggle()
						l += x * x
					}
					if y == 0 {
						y = s.Jiggle()
						l += y * y
					}
					l = math.Sqrt(l)
					l = (r - l) / l * f.Strength
					x *= l
					y *= l
					// Equal radii split the correction evenly.
					a.VX += x * 0.5
					a.VY += y * 0.5
					b.VX -= x * 0.5
					b.VY -= y * 0.5
				}
			}
		}
	}
}

// ManyBodyForce applies mutual attraction (positive strength) or repulsion
// (negative strength) using a Barnes-Hut approximation.
type ManyBodyForce struct {
	Nodes       Selector
	Strength    float64
	Theta       float64
	DistanceMin float64
}

// NewManyBodyForce returns a many-body force with the usual theta and minimum distance.
func NewManyBodyForce(nodes Selector, strength float64) *ManyBodyForce {
	return &ManyBodyForce{Nodes: nodes, Strength: strength, Theta: 0.9, DistanceMin: 1}
}

// Apply implements Force.
func (f *ManyBodyForce) Apply(s *Simulation, alpha float64) {
	nodes := f.Nodes()
	if len(nodes) == 0 {
		return
	}
	tree := buildQuadtree(nodes)
	tree.accumulate(f.Strength)

	theta2 := f.Theta * f.Theta
	dmin2 := f.DistanceMin * f.DistanceMin
	for _, n := range nodes {
		tree.applyTo(s, n, alpha, theta2, dmin2, f.Strength)
	}
}
