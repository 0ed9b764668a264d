package simulation

import (
	"math"
	"testing"
)

func TestAddNodes_PhyllotaxisPlacementAndDedupe(t *testing.T) {
	s := New(1)
	added := s.AddNodes([]NodeSpec{{ID: 1}, {ID: 2}, {ID: 1}})
	if len(added) != 2 {
		t.Fatalf("added %d nodes, want 2", len(added))
	}
	if len(s.Nodes()) != 2 {
		t.Errorf("nodes = %d, want 2", len(s.Nodes()))
	}
	n0, n1 := s.Nodes()[0], s.Nodes()[1]
	if n0.X == n1.X && n0.Y == n1.Y {
		t.Error("spiral placement produced coincident nodes")
	}
	if r := math.Hypot(n0.X, n0.Y); math.Abs(r-initialRadius*math.Sqrt(0.5)) > 1e-9 {
		t.Errorf("first node radius = %v", r)
	}
}

func TestAddNodes_ExplicitPosition(t *testing.T) {
	s := New(1)
	s.AddNodes([]NodeSpec{{ID: -1, X: 5, Y: -3, HasPosition: true}})
	n, ok := s.Node(-1)
	if !ok || n.X != 5 || n.Y != -3 {
		t.Errorf("node = %+v, %v", n, ok)
	}
}

func TestTick_AlphaDecaysToMin(t *testing.T) {
	s := New(1)
	s.SetAlphaMin(0.001)
	ticks := 0
	for !s.Cooled() && ticks < 1000 {
		s.Tick()
		ticks++
	}
	if ticks < 290 || ticks > 310 {
		t.Errorf("cooled after %d ticks, want about 300", ticks)
	}
}

func TestSetForce_ReplacesInPlace(t *testing.T) {
	s := New(1)
	a, b, c := &CenterForce{}, &CenterForce{}, &CenterForce{}
	s.SetForce("a", a)
	s.SetForce("b", b)
	s.SetForce("a", c)

	if len(s.forces) != 2 || s.forces[0].name != "a" || s.forces[0].force != c {
		t.Errorf("forces = %+v", s.forces)
	}
	s.RemoveForce("a")
	if _, ok := s.Force("a"); ok {
		t.Error("force a not removed")
	}
}

func TestManyBodyRepulsionSeparatesNodes(t *testing.T) {
	s := New(1)
	s.AddNodes([]NodeSpec{{ID: 1, X: 0, Y: 0, HasPosition: true}, {ID: 2, X: 1, Y: 0, HasPosition: true}})
	s.SetForce("charge", NewManyBodyForce(s.Nodes, -30))
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	a, _ := s.Node(1)
	b, _ := s.Node(2)
	if d := math.Hypot(a.X-b.X, a.Y-b.Y); d <= 1 {
		t.Errorf("distance after repulsion = %v, want > 1", d)
	}
}

func TestManyBodyMatchesBruteForceForSmallGraphs(t *testing.T) {
	s := New(1)
	s.AddNodes([]NodeSpec{
		{ID: 1, X: 0, Y: 0, HasPosition: true},
		{ID: 2, X: 10, Y: 0, HasPosition: true},
		{ID: 3, X: 0, Y: 10, HasPosition: true},
	})
	f := &ManyBodyForce{Nodes: s.Nodes, Strength: -30, Theta: 0, DistanceMin: 1}
	f.Apply(s, 1)

	n1, _ := s.Node(1)
	// Each neighbour at distance 10 pushes node 1 away by 10*30/100 on its axis.
	if math.Abs(n1.VX+3) > 1e-6 || math.Abs(n1.VY+3) > 1e-6 {
		t.Errorf("velocity = (%v, %v), want (-3, -3)", n1.VX, n1.VY)
	}
}

func TestLinkForceConvergesToDistance(t *testing.T) {
	s := New(1)
	nodes := s.AddNodes([]NodeSpec{{ID: 1, X: 0, Y: 0, HasPosition: true}, {ID: 2, X: 300, Y: 0, HasPosition: true}})
	s.SetForce("link", NewLinkForce([]Link{{Source: nodes[0], Target: nodes[1]}}, 90, 1))
	s.SetAlphaTarget(1)
	for i := 0; i < 300; i++ {
		s.Tick()
	}
	if d := math.Hypot(nodes[0].X-nodes[1].X, nodes[0].Y-nodes[1].Y); math.Abs(d-90) > 1 {
		t.Errorf("link length = %v, want 90", d)
	}
}

func TestCollideForcePushesOverlappingNodesApart(t *testing.T) {
	s := New(1)
	s.AddNodes([]NodeSpec{{ID: 1, X: 0, Y: 0, HasPosition: true}, {ID: 2, X: 10, Y: 0, HasPosition: true}})
	s.SetForce("collide", &CollideForce{Nodes: s.Nodes, Radius: 20, Strength: 1})
	s.SetAlphaTarget(1)
	for i := 0; i < 100; i++ {
		s.Tick()
	}
	a, _ := s.Node(1)
	b, _ := s.Node(2)
	if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < 39 {
		t.Errorf("distance = %v, want about 40", d)
	}
}

func TestCenterForceMovesMeanToOrigin(t *testing.T) {
	s := New(1)
	s.AddNodes([]NodeSpec{{ID: 1, X: 10, Y: 10, HasPosition: true}, {ID: 2, X: 30, Y: 10, HasPosition: true}})
	(&CenterForce{Nodes: s.Nodes, Strength: 1}).Apply(s, 1)

	a, _ := s.Node(1)
	b, _ := s.Node(2)
	if a.X+b.X != 0 || a.Y+b.Y != 0 {
		t.Errorf("mean = (%v, %v), want origin", (a.X+b.X)/2, (a.Y+b.Y)/2)
	}
}

func TestFixedNodesDoNotMove(t *testing.T) {
	s := New(1)
	nodes := s.AddNodes([]NodeSpec{{ID: 1, X: 5, Y: 5, HasPosition: true}})
	nodes[0].Fixed = true
	s.SetForce("x", &PositionForce{Nodes: s.Nodes, Axis: AxisX, Target: Constant(0), Strength: 1})
	s.Tick()
	if nodes[0].X != 5 {
		t.Errorf("fixed node moved to %v", nodes[0].X)
	}
}

func TestJiggleIsDeterministicPerSeed(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 5; i++ {
		if a.Jiggle() != b.Jiggle() {
			t.Fatal("same seed produced different jiggle")
		}
	}
	if j := New(7).Jiggle(); math.Abs(j) > 5e-7 {
		t.Errorf("jiggle %v out of range", j)
	}
}

func TestQuadtreeCoincidentPoints(t *testing.T) {
	s := New(1)
	s.AddNodes([]NodeSpec{
		{ID: 1, X: 1, Y: 1, HasPosition: true},
		{ID: 2, X: 1, Y: 1, HasPosition: true},
		{ID: 3, X: 1, Y: 1, HasPosition: true},
	})
	f := NewManyBodyForce(s.Nodes, -30)
	f.Apply(s, 1)
	for _, n := range s.Nodes() {
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) || math.IsInf(n.VX, 0) {
			t.Errorf("node %d velocity = (%v, %v)", n.ID, n.VX, n.VY)
		}
	}
}
