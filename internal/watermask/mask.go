// Package watermask classifies geographic points as ocean, lake or land
// so marine-only overlays can be suppressed over land. The mask is a
// refinement, not a correctness requirement: whenever classification data
// is missing the mask fails open and the overlay draws.
package watermask

import "github.com/ngmaloney/marine-overlay/internal/models"

// Mask is an immutable snapshot of the land/water classification lattice.
// The lattice is aligned to the exact positions the renderer iterates, so
// masking decisions match the drawn glyphs point for point. A single
// writer replaces the whole Mask; readers only ever hold a reference.
type Mask struct {
	points []models.WaterGridPoint
}

// NewMask wraps a classification lattice. A nil or empty slice yields a
// mask that shows everything.
func NewMask(points []models.WaterGridPoint) *Mask {
	return &Mask{points: points}
}

// Len returns the number of lattice points in the mask.
func (m *Mask) Len() int {
	if m == nil {
		return 0
	}
	return len(m.points)
}

// Show reports whether the mode's quantity should be drawn at (lat, lon).
// Wind is valid everywhere. Marine quantities require the nearest lattice
// point to be ocean: lakes are excluded because the upstream marine data
// source does not cover them. An empty mask shows everything (fail open).
func (m *Mask) Show(mode models.DisplayMode, lat, lon float64) bool {
	if !mode.IsMarine() {
		return true
	}
	if m.Len() == 0 {
		return true
	}

	best := -1
	bestDist := 0.0
	for i := range m.points {
		dLat := m.points[i].Lat - lat
		dLon := m.points[i].Lon - lon
		d := dLat*dLat + dLon*dLon
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return m.points[best].Type == models.SurfaceOcean
}
