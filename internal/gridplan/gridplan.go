// Package gridplan turns viewport bounds into a data-fetch resolution and
// padded fetch bounds. The fetch resolution is quantized to a ladder of
// "nice" grid steps so cache keys stay stable while panning; the renderer
// derives its own continuous lattice spacing from the same raw-spacing
// rule so glyph density stays smooth while zooming.
package gridplan

import (
	"math"

	"github.com/ngmaloney/marine-overlay/internal/models"
)

// TargetDiagonalCount is how many glyphs should fit along the viewport
// diagonal, independent of zoom level.
const TargetDiagonalCount = 15

// SourceResolution is the native grid step of the upstream data source,
// in degrees. Fetch resolution never goes below it.
const SourceResolution = 0.1

// resolutionLadder holds the allowed fetch resolutions in degrees,
// ascending. Derived minimum resolutions snap up to the nearest entry.
var resolutionLadder = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0}

// ComputeRawSpacing returns the continuous lattice spacing in degrees for
// the given viewport: diagonal divided by TargetDiagonalCount.
//
// Both the fetch planner and the renderer go through this one function;
// the two lattices are deliberately decoupled otherwise (quantized vs
// continuous) but must agree on the underlying density rule.
func ComputeRawSpacing(view models.GridBounds) float64 {
	return math.Hypot(view.LatRange(), view.LonRange()) / TargetDiagonalCount
}

// Plan computes the fetch resolution and padded fetch bounds for a
// viewport. The resolution is the coarsest ladder entry that keeps the
// fetched point count at or below the number of glyph positions visible
// in the viewport, floored at SourceResolution. The bounds are the
// viewport snapped outward to resolution multiples plus one extra
// resolution ring, so small pans keep hitting already-fetched data.
func Plan(view models.GridBounds) (resolution float64, fetch models.GridBounds) {
	rawSpacing := ComputeRawSpacing(view)
	if rawSpacing <= 0 {
		return SourceResolution, view
	}

	// Cap fetched points at the number of renderable lattice points.
	arrowCols := math.Ceil(view.LonRange() / rawSpacing)
	arrowRows := math.Ceil(view.LatRange() / rawSpacing)
	maxPoints := math.Max(arrowCols*arrowRows, 1)

	// Smallest resolution whose grid over the viewport stays under the cap.
	minResolution := math.Sqrt(view.LatRange() * view.LonRange() / maxPoints)

	resolution = snapUp(minResolution)

	fetch = models.GridBounds{
		South: math.Floor(view.South/resolution)*resolution - resolution,
		North: math.Ceil(view.North/resolution)*resolution + resolution,
		West:  math.Floor(view.West/resolution)*resolution - resolution,
		East:  math.Ceil(view.East/resolution)*resolution + resolution,
	}
	fetch.South = math.Max(fetch.South, -90)
	fetch.North = math.Min(fetch.North, 90)
	return resolution, fetch
}

// MaskPlan computes the water-mask lattice for a viewport: the exact
// continuous spacing the renderer draws at, with bounds snapped outward
// to spacing multiples plus one ring. Anchoring both the mask lattice and
// the render lattice to absolute multiples of the same spacing keeps
// masking decisions aligned with drawn glyphs.
func MaskPlan(view models.GridBounds) (spacing float64, lattice models.GridBounds) {
	spacing = ComputeRawSpacing(view)
	if spacing <= 0 {
		return SourceResolution, view
	}
	lattice = models.GridBounds{
		South: math.Floor(view.South/spacing)*spacing - spacing,
		North: math.Ceil(view.North/spacing)*spacing + spacing,
		West:  math.Floor(view.West/spacing)*spacing - spacing,
		East:  math.Ceil(view.East/spacing)*spacing + spacing,
	}
	lattice.South = math.Max(lattice.South, -90)
	lattice.North = math.Min(lattice.North, 90)
	return spacing, lattice
}

// snapUp returns the smallest ladder resolution >= r, clamped to the
// ladder's ends.
func snapUp(r float64) float64 {
	if r < SourceResolution {
		return SourceResolution
	}
	for _, step := range resolutionLadder {
		if step >= r {
			return step
		}
	}
	return resolutionLadder[len(resolutionLadder)-1]
}
