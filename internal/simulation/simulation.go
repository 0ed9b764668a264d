// Package simulation positions graph vertices with an incremental force-directed
// layout and drives a rendering surface from a stream of graph batches.
package simulation

import (
	"math"
	"math/rand/v2"
)

const (
	initialRadius        = 10.0
	defaultVelocityDecay = 0.4
)

var (
	initialAngle = math.Pi * (3 - math.Sqrt(5))
	// Alpha falls from 1 to 0.001 in 300 ticks.
	defaultAlphaDecay = 1 - math.Pow(0.001, 1.0/300)
)

// Node is a body in the simulation. Fixed nodes ignore forces.
type Node struct {
	ID    int
	Index int
	X, Y  float64
	VX    float64
	VY    float64
	Fixed bool
}

// Force updates node velocities for one tick at the given alpha.
type Force interface {
	Apply(s *Simulation, alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation is a velocity Verlet force simulation in the style of d3-force.
// It is not safe for concurrent use.
type Simulation struct {
	nodes []*Node
	byID  map[int]*Node
	// forces run in insertion order; replacing a force keeps its slot.
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	rng *rand.Rand
}

// New creates an empty simulation whose jiggle is seeded by seed.
func New(seed uint64) *Simulation {
	return &Simulation{
		byID:          make(map[int]*Node),
		alpha:         1,
		alphaMin:      0.001,
		alphaDecay:    defaultAlphaDecay,
		velocityDecay: 1 - defaultVelocityDecay,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NodeSpec describes a node to add. Nodes without a position are placed on a
// phyllotaxis spiral around the origin.
type NodeSpec struct {
	ID          int
	X, Y        float64
	HasPosition bool
}

// AddNodes adds nodes whose ids are not present yet and returns the new ones.
func (s *Simulation) AddNodes(specs []NodeSpec) []*Node {
	added := make([]*Node, 0, len(specs))
	for _, spec := range specs {
		if _, ok := s.byID[spec.ID]; ok {
			continue
		}
		n := &Node{ID: spec.ID, Index: len(s.nodes)}
		if spec.HasPosition {
			n.X, n.Y = spec.X, spec.Y
		} else {
			radius := initialRadius * math.Sqrt(0.5+float64(n.Index))
			angle := float64(n.Index) * initialAngle
			n.X, n.Y = radius*math.Cos(angle), radius*math.Sin(angle)
		}
		s.nodes = append(s.nodes, n)
		s.byID[n.ID] = n
		added = append(added, n)
	}
	return added
}

// Node returns the node with the given id.
func (s *Simulation) Node(id int) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice must not be modified.
func (s *Simulation) Nodes() []*Node {
	return s.nodes
}

// SetForce installs f under name, replacing any force with the same name.
func (s *Simulation) SetForce(name string, f Force) {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// RemoveForce deletes the named force.
func (s *Simulation) RemoveForce(name string) {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Force returns the named force.
func (s *Simulation) Force(name string) (Force, bool) {
	for _, f := range s.forces {
		if f.name == name {
			return f.force, true
		}
	}
	return nil, false
}

// Tick advances the simulation by one step.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, f := range s.forces {
		f.force.Apply(s, s.alpha)
	}

	for _, n := range s.nodes {
		if n.Fixed {
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= s.velocityDecay
		n.VY *= s.velocityDecay
		n.X += n.VX
		n.Y += n.VY
	}
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the current temperature.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaMin returns the temperature below which the simulation is cooled.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// SetAlphaMin sets the cooling threshold.
func (s *Simulation) SetAlphaMin(a float64) { s.alphaMin = a }

// SetAlphaTarget sets the temperature alpha decays towards.
func (s *Simulation) SetAlphaTarget(a float64) { s.alphaTarget = a }

// Cooled reports whether alpha has dropped below alphaMin.
func (s *Simulation) Cooled() bool { return s.alpha < s.alphaMin }

// Jiggle returns a tiny random offset used to separate coincident nodes.
func (s *Simulation) Jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// Clear removes all nodes and forces and resets alpha.
func (s *Simulation) Clear() {
	s.nodes = nil
	s.byID = make(map[int]*Node)
	s.forces = nil
	s.alpha = 1
	s.alphaTarget = 0
}
