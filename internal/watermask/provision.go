package watermask

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/ngmaloney/marine-overlay/internal/database"
	"github.com/ngmaloney/marine-overlay/internal/models"
)

// cacheSpacing is the lattice step of the local classification cache in
// degrees. Coarser than the remote water grid but good enough to seed the
// mask before the remote service has answered.
const cacheSpacing = 0.5

// NeedsProvisioning reports whether the local classification cache has to
// be built from a shapefile.
func NeedsProvisioning(dbPath string) (bool, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='water_cells'").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for water_cells table: %w", err)
	}
	return count == 0, nil
}

// ProvisionCache builds the water_cells table from a water-bodies
// shapefile. Polygons carry a feature-type attribute in their first DBF
// field ("ocean" or "lake"); lattice points outside every polygon are
// classified as land.
func ProvisionCache(dbPath, shapefilePath string) error {
	shape, err := shp.Open(shapefilePath)
	if err != nil {
		return fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	polygons, err := readWaterPolygons(shape)
	if err != nil {
		return fmt.Errorf("reading shapefile: %w", err)
	}
	log.Printf("Classifying water cells from %d polygons...", len(polygons))

	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS water_cells (
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			type TEXT NOT NULL,
			PRIMARY KEY (lat, lon)
		);
		CREATE INDEX IF NOT EXISTS idx_water_cells_bbox ON water_cells(lat, lon);
	`)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO water_cells (lat, lon, type) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for lat := -90.0; lat <= 90.0; lat += cacheSpacing {
		for lon := -180.0; lon < 180.0; lon += cacheSpacing {
			cellType := classify(polygons, lat, lon)
			if _, err := stmt.Exec(lat, lon, string(cellType)); err != nil {
				tx.Rollback()
				return fmt.Errorf("inserting cell: %w", err)
			}
			count++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cells: %w", err)
	}

	log.Printf("Successfully provisioned %d water cells at %s", count, dbPath)
	return nil
}

// waterPolygon is one water body with a bounding box prefilter.
type waterPolygon struct {
	surface                models.SurfaceType
	minX, minY, maxX, maxY float64
	rings                  [][]shp.Point
}

func readWaterPolygons(shape *shp.Reader) ([]waterPolygon, error) {
	var polygons []waterPolygon
	for shape.Next() {
		n, p := shape.Shape()
		polygon, ok := p.(*shp.Polygon)
		if !ok {
			continue
		}

		surface := models.SurfaceOcean
		if strings.EqualFold(shape.ReadAttribute(n, 0), string(models.SurfaceLake)) {
			surface = models.SurfaceLake
		}

		bbox := polygon.BBox()
		wp := waterPolygon{
			surface: surface,
			minX:    bbox.MinX, minY: bbox.MinY,
			maxX: bbox.MaxX, maxY: bbox.MaxY,
		}
		for partIdx := 0; partIdx < len(polygon.Parts); partIdx++ {
			start := int(polygon.Parts[partIdx])
			end := len(polygon.Points)
			if partIdx+1 < len(polygon.Parts) {
				end = int(polygon.Parts[partIdx+1])
			}
			wp.rings = append(wp.rings, polygon.Points[start:end])
		}
		polygons = append(polygons, wp)
	}
	return polygons, nil
}

// classify returns the surface type at a point: the first water polygon
// containing it wins, otherwise land.
func classify(polygons []waterPolygon, lat, lon float64) models.SurfaceType {
	for i := range polygons {
		p := &polygons[i]
		if lon < p.minX || lon > p.maxX || lat < p.minY || lat > p.maxY {
			continue
		}
		if p.contains(lat, lon) {
			return p.surface
		}
	}
	return models.SurfaceLand
}

// contains runs an even-odd ray cast across all rings, so holes punched
// by inner rings are respected.
func (p *waterPolygon) contains(lat, lon float64) bool {
	inside := false
	for _, ring := range p.rings {
		for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
			yi, xi := ring[i].Y, ring[i].X
			yj, xj := ring[j].Y, ring[j].X
			if (yi > lat) != (yj > lat) &&
				lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}

// Store reads the local classification cache. It implements the mask
// fallback the fetch coordinator consults when the remote water-grid
// service is unavailable.
type Store struct {
	db *sql.DB
}

// OpenStore opens the classification cache database.
func OpenStore(dbPath string) (*Store, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load builds a classification lattice covering bounds at the requested
// spacing from cached cells. Each lattice point takes the class of the
// nearest cached cell; with no cached cells in range the result is empty
// and the mask fails open.
func (s *Store) Load(bounds models.GridBounds, spacing float64) ([]models.WaterGridPoint, error) {
	rows, err := s.db.Query(`
		SELECT lat, lon, type FROM water_cells
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
	`, bounds.South-cacheSpacing, bounds.North+cacheSpacing,
		bounds.West-cacheSpacing, bounds.East+cacheSpacing)
	if err != nil {
		return nil, fmt.Errorf("querying water cells: %w", err)
	}
	defer rows.Close()

	var cells []models.WaterGridPoint
	for rows.Next() {
		var cell models.WaterGridPoint
		var cellType string
		if err := rows.Scan(&cell.Lat, &cell.Lon, &cellType); err != nil {
			return nil, fmt.Errorf("scanning water cell: %w", err)
		}
		cell.Type = models.SurfaceType(cellType)
		cells = append(cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading water cells: %w", err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	var grid []models.WaterGridPoint
	for lat := bounds.South; lat <= bounds.North+1e-9; lat += spacing {
		for lon := bounds.West; lon <= bounds.East+1e-9; lon += spacing {
			grid = append(grid, models.WaterGridPoint{
				Lat:  lat,
				Lon:  lon,
				Type: nearestCell(cells, lat, lon).Type,
			})
		}
	}
	return grid, nil
}

func nearestCell(cells []models.WaterGridPoint, lat, lon float64) models.WaterGridPoint {
	best := 0
	bestDist := math.Inf(1)
	for i := range cells {
		dLat := cells[i].Lat - lat
		dLon := cells[i].Lon - lon
		if d := dLat*dLat + dLon*dLon; d < bestDist {
			best = i
			bestDist = d
		}
	}
	return cells[best]
}
