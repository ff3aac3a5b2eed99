package models

import "fmt"

// GridBounds is a geographic bounding box in degrees.
// Invariant: South < North and West < East.
type GridBounds struct {
	South float64
	North float64
	West  float64
	East  float64
}

// LatRange returns the latitude extent in degrees.
func (b GridBounds) LatRange() float64 {
	return b.North - b.South
}

// LonRange returns the longitude extent in degrees.
func (b GridBounds) LonRange() float64 {
	return b.East - b.West
}

// Valid reports whether the bounds describe a non-degenerate box.
func (b GridBounds) Valid() bool {
	return b.South < b.North && b.West < b.East
}

// Contains reports whether the point lies inside the bounds (inclusive).
func (b GridBounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// String returns the bounds as "south,north,west,east" with fixed precision,
// suitable for API queries and cache keys.
func (b GridBounds) String() string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", b.South, b.North, b.West, b.East)
}
