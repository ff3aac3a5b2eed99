package models

// SurfaceType classifies what a water-grid point lies over.
type SurfaceType string

const (
	SurfaceOcean SurfaceType = "ocean"
	SurfaceLake  SurfaceType = "lake"
	SurfaceLand  SurfaceType = "land"
)

// WaterGridPoint is one point of the coarse land/water classification
// lattice used to suppress marine-only overlays over land. Lakes are
// classified separately from ocean because the marine data source does
// not cover them.
type WaterGridPoint struct {
	Lat  float64     `json:"lat"`
	Lon  float64     `json:"lon"`
	Type SurfaceType `json:"type"`
}
