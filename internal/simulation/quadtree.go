package simulation

import "math"

const maxQuadDepth = 32

// quad is a Barnes-Hut quadtree cell. Leaves hold one or more coincident nodes.
type quad struct {
	x0, y0, x1 float64
	y1         float64
	children   [4]*quad
	internal   bool
	points     []*Node

	// centre of charge and total charge, set by accumulate
	cx, cy, value float64
}

func buildQuadtree(nodes []*Node) *quad {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		x0 = math.Min(x0, n.X)
		y0 = math.Min(y0, n.Y)
		x1 = math.Max(x1, n.X)
		y1 = math.Max(y1, n.Y)
	}
	size := math.Max(x1-x0, y1-y0)
	if size == 0 {
		size = 1
	}
	root := &quad{x0: x0, y0: y0, x1: x0 + size, y1: y0 + size}
	for _, n := range nodes {
		root.insert(n, 0)
	}
	return root
}

func (q *quad) insert(n *Node, depth int) {
	if !q.internal {
		if len(q.points) == 0 || depth >= maxQuadDepth || (q.points[0].X == n.X && q.points[0].Y == n.Y) {
			q.points = append(q.points, n)
			return
		}
		old := q.points
		q.points = nil
		q.internal = true
		for _, p := range old {
			q.child(p).insert(p, depth+1)
		}
	}
	q.child(n).insert(n, depth+1)
}

func (q *quad) child(n *Node) *quad {
	xm, ym := (q.x0+q.x1)/2, (q.y0+q.y1)/2
	i := 0
	if n.X >= xm {
		i |= 1
	}
	if n.Y >= ym {
		i |= 2
	}
	if q.children[i] == nil {
		c := &quad{x0: q.x0, y0: q.y0, x1: xm, y1: ym}
		if i&1 != 0 {
			c.x0, c.x1 = xm, q.x1
		}
		if i&2 != 0 {
			c.y0, c.y1 = ym, q.y1
		}
		q.children[i] = c
	}
	return q.children[i]
}

// accumulate computes the charge and charge-weighted centre of every cell.
func (q *quad) accumulate(strength float64) {
	if !q.internal {
		if len(q.points) > 0 {
			q.cx, q.cy = q.points[0].X, q.points[0].Y
		}
		q.value = strength * float64(len(q.points))
		return
	}
	var x, y, weight, value float64
	for _, c := range q.children {
		if c == nil {
			continue
		}
		c.accumulate(strength)
		w := math.Abs(c.value)
		value += c.value
		weight += w
		x += w * c.cx
		y += w * c.cy
	}
	if weight > 0 {
		q.cx, q.cy = x/weight, y/weight
	}
	q.value = value
}

// applyTo adds the force exerted by this cell on n.
func (q *quad) applyTo(s *Simulation, n *Node, alpha, theta2, dmin2, strength float64) {
	if q.value == 0 {
		return
	}
	x := q.cx - n.X
	y := q.cy - n.Y
	w := q.x1 - q.x0
	l := x*x + y*y

	// Far enough away to treat the cell as a single body.
	if w*w/theta2 < l {
		if x == 0 {
			x = s.Jiggle()
			l += x * x
		}
		if y == 0 {
			y = s.Jiggle()
			l += y * y
		}
		if l < dmin2 {
			l = math.Sqrt(dmin2 * l)
		}
		n.VX += x * q.value * alpha / l
		n.VY += y * q.value * alpha / l
		return
	}

	if q.internal {
		for _, c := range q.children {
			if c != nil {
				c.applyTo(s, n, alpha, theta2, dmin2, strength)
			}
		}
		return
	}

	if len(q.points) == 1 && q.points[0] == n {
		return
	}
	if x == 0 {
		x = s.Jiggle()
		l += x * x
	}
	if y == 0 {
		y = s.Jiggle()
		l += y * y
	}
	if l < dmin2 {
		l = math.Sqrt(dmin2 * l)
	}
	for _, p := range q.points {
		if p == n {
			continue
		}
		k := strength * alpha / l
		n.VX += x * k
		n.VY += y * k
	}
}
