package tui

import (
	"math"

	"github.com/graphstudio/studio/internal/simulation"
)

// cellAspect is the height-to-width ratio of a terminal cell.
const cellAspect = 0.5

// Zoom limits and step.
const (
	minZoom  = 0.1
	maxZoom  = 20
	zoomStep = 1.25
)

// Viewport is the user's pan and zoom over the fitted layout.
type Viewport struct {
	Zoom float64
	PanX int
	PanY int
}

// DefaultViewport fits the whole layout with no pan.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ZoomIn magnifies the view, clamped to maxZoom.
func (v Viewport) ZoomIn() Viewport {
	v.Zoom = math.Min(v.Zoom*zoomStep, maxZoom)
	return v
}

// ZoomOut shrinks the view, clamped to minZoom.
func (v Viewport) ZoomOut() Viewport {
	v.Zoom = math.Max(v.Zoom/zoomStep, minZoom)
	return v
}

// Pan shifts the view by dx, dy cells.
func (v Viewport) Pan(dx, dy int) Viewport {
	v.PanX += dx
	v.PanY += dy
	return v
}

// projection maps layout coordinates to canvas cells.
type projection struct {
	cx, cy float64
	scale  float64
	ox, oy float64
}

// fit builds a projection that centres the frame's bounding box on a
// width x height canvas and scales it to fill the canvas at zoom 1.
func fit(f *simulation.Frame, width, height int, v Viewport) projection {
	p := projection{
		scale: 1,
		ox:    float64(width)/2 + float64(v.PanX),
		oy:    float64(height)/2 + float64(v.PanY),
	}
	if f == nil || len(f.Vertices) == 0 {
		return p
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, vp := range f.Vertices {
		minX = math.Min(minX, vp.X)
		maxX = math.Max(maxX, vp.X)
		minY = math.Min(minY, vp.Y)
		maxY = math.Max(maxY, vp.Y)
	}

	p.cx = (minX + maxX) / 2
	p.cy = (minY + maxY) / 2

	spanX := math.Max(maxX-minX, 1)
	spanY := math.Max(maxY-minY, 1)
	sx := float64(max(width-4, 1)) / spanX
	sy := float64(max(height-2, 1)) / (spanY * cellAspect)
	p.scale = math.Min(sx, sy) * v.Zoom
	return p
}

// point converts layout coordinates to a canvas cell.
func (p projection) point(x, y float64) (int, int) {
	col := p.ox + (x-p.cx)*p.scale
	row := p.oy + (y-p.cy)*p.scale*cellAspect
	return int(math.Round(col)), int(math.Round(row))
}
