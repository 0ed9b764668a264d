package simulation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/models"
)

// ReheatAlpha is the minimum temperature after new data joins a running layout.
const ReheatAlpha = 0.3

// ErrDestroyed is returned when updating a destroyed visualiser.
var ErrDestroyed = errors.New("visualiser destroyed")

// Surface draws a layout. Implementations receive graph elements once, when
// they join the layout, and a frame after every tick.
type Surface interface {
	AddNodes(vertices []models.VertexData, edges []models.EdgeData)
	Render(f Frame)
	Destroy()
}

// SurfaceFactory creates a fresh surface for a simulation identity.
type SurfaceFactory func(simulationID string) Surface

// State is a visualiser lifecycle state.
type State int

// Visualiser states.
const (
	StateUninitialized State = iota
	StateRunningEmpty
	StateRunningPopulated
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunningEmpty:
		return "running-empty"
	case StateRunningPopulated:
		return "running-populated"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Batch is graph data drained for one simulation identity.
type Batch struct {
	SimulationID string
	Graph        models.GraphData
}

// Visualiser keeps one layout alive across batches for the same simulation
// identity and rebuilds it when the identity changes.
type Visualiser struct {
	mu         sync.Mutex
	newSurface SurfaceFactory
	surface    Surface
	layout     *Layout
	simID      string
	state      State
	seed       uint64
	log        *logrus.Logger
}

// NewVisualiser creates an uninitialised visualiser.
func NewVisualiser(newSurface SurfaceFactory, seed uint64, log *logrus.Logger) *Visualiser {
	return &Visualiser{newSurface: newSurface, seed: seed, log: log}
}

// Update applies a batch. The first batch for an identity initialises the
// layout and surface; later batches for the same identity add only unseen
// vertices and edges; a batch for another identity tears everything down first.
func (v *Visualiser) Update(b Batch) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.state == StateDestroyed:
		return ErrDestroyed
	case v.state == StateUninitialized:
		v.initialise(b.SimulationID)
	case b.SimulationID != v.simID:
		v.log.WithFields(logrus.Fields{
			"from": v.simID,
			"to":   b.SimulationID,
		}).Debug("simulation identity changed, rebuilding")
		v.teardown()
		v.initialise(b.SimulationID)
	}

	warm := !v.layout.Empty()
	vertices := v.layout.AddVertices(b.Graph.Vertices)
	edges := v.layout.AddEdges(b.Graph.Edges)
	if len(vertices) == 0 && len(edges) == 0 {
		return nil
	}

	v.surface.AddNodes(vertices, edges)
	if warm {
		v.layout.Reheat(ReheatAlpha)
	}
	v.state = StateRunningPopulated
	return nil
}

func (v *Visualiser) initialise(simID string) {
	v.simID = simID
	v.layout = NewLayout(v.seed)
	v.surface = v.newSurface(simID)
	v.state = StateRunningEmpty
}

func (v *Visualiser) teardown() {
	if v.surface != nil {
		v.surface.Destroy()
		v.surface = nil
	}
	if v.layout != nil {
		v.layout.Clear()
		v.layout = nil
	}
}

// Tick advances a populated, still-warm layout and renders the frame.
// It reports whether a frame was rendered.
func (v *Visualiser) Tick() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateRunningPopulated || v.layout.Cooled() {
		return false
	}
	v.layout.Tick()
	v.surface.Render(v.layout.Frame())
	return true
}

// Destroy releases the surface and stops the layout. Further updates fail.
func (v *Visualiser) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateDestroyed {
		return
	}
	v.teardown()
	v.state = StateDestroyed
}

// State returns the lifecycle state.
func (v *Visualiser) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SimulationID returns the identity of the current layout.
func (v *Visualiser) SimulationID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.simID
}

// Layout returns the current layout, or nil before the first batch and after Destroy.
func (v *Visualiser) Layout() *Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}
