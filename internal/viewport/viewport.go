// Package viewport models the pannable/zoomable map view the overlay is
// attached to. The overlay only ever consumes an immutable Transform
// snapshot per draw; it does not own the map.
package viewport

import "github.com/ngmaloney/marine-overlay/internal/models"

// Transform is a snapshot of the viewport geometry taken at draw time:
// geographic bounds plus the projection onto the drawing surface.
type Transform struct {
	Bounds models.GridBounds
	Width  int // surface width in cells
	Height int // surface height in cells
}

// Project maps a geographic coordinate to surface coordinates. X grows
// east, Y grows south (screen convention, row 0 at the top).
func (t Transform) Project(lat, lon float64) (x, y float64) {
	x = (lon - t.Bounds.West) / t.Bounds.LonRange() * float64(t.Width)
	y = (t.Bounds.North - lat) / t.Bounds.LatRange() * float64(t.Height)
	return x, y
}

// OnScreen reports whether surface coordinates fall inside the surface
// plus a margin of cells on every side.
func (t Transform) OnScreen(x, y, margin float64) bool {
	return x >= -margin && x <= float64(t.Width)+margin &&
		y >= -margin && y <= float64(t.Height)+margin
}

// Viewport is a terminal map view: a geographic center, a longitude span
// across the surface width, and the surface size in character cells.
// Terminal cells are roughly twice as tall as wide, so one row covers
// twice the degrees of one column.
type Viewport struct {
	centerLat float64
	centerLon float64
	lonSpan   float64 // degrees across the full width
	width     int
	height    int
}

const (
	minLonSpan = 0.5
	maxLonSpan = 120
	cellAspect = 2.0 // degrees per row relative to degrees per column
)

// New creates a viewport centered on the given coordinate.
func New(centerLat, centerLon, lonSpan float64) *Viewport {
	v := &Viewport{
		centerLat: clamp(centerLat, -85, 85),
		centerLon: centerLon,
		lonSpan:   clamp(lonSpan, minLonSpan, maxLonSpan),
		width:     80,
		height:    24,
	}
	v.clampLon()
	return v
}

// Resize updates the surface size in cells.
func (v *Viewport) Resize(width, height int) {
	if width > 0 {
		v.width = width
	}
	if height > 0 {
		v.height = height
	}
}

// Bounds returns the current geographic bounds of the view.
func (v *Viewport) Bounds() models.GridBounds {
	latSpan := v.latSpan()
	return models.GridBounds{
		South: v.centerLat - latSpan/2,
		North: v.centerLat + latSpan/2,
		West:  v.centerLon - v.lonSpan/2,
		East:  v.centerLon + v.lonSpan/2,
	}
}

// Transform returns the projection snapshot for the current view.
func (v *Viewport) Transform() Transform {
	return Transform{Bounds: v.Bounds(), Width: v.width, Height: v.height}
}

// Pan moves the center by the given fraction of the visible span.
// Positive dy moves north, positive dx moves east. The view stops at the
// antimeridian: bounds never leave [-180, 180] because the planar fetch,
// interpolation and mask paths cannot match samples across it.
func (v *Viewport) Pan(dx, dy float64) {
	v.centerLon += dx * v.lonSpan
	v.centerLat += dy * v.latSpan()
	v.centerLat = clamp(v.centerLat, -85, 85)
	v.clampLon()
}

// ZoomIn halves the visible span, down to the minimum.
func (v *Viewport) ZoomIn() {
	v.lonSpan = clamp(v.lonSpan/2, minLonSpan, maxLonSpan)
}

// ZoomOut doubles the visible span, up to the maximum. The center shifts
// if the wider view would otherwise cross the antimeridian.
func (v *Viewport) ZoomOut() {
	v.lonSpan = clamp(v.lonSpan*2, minLonSpan, maxLonSpan)
	v.clampLon()
}

func (v *Viewport) clampLon() {
	v.centerLon = clamp(v.centerLon, -180+v.lonSpan/2, 180-v.lonSpan/2)
}

func (v *Viewport) latSpan() float64 {
	if v.width == 0 {
		return v.lonSpan
	}
	return v.lonSpan * cellAspect * float64(v.height) / float64(v.width)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
