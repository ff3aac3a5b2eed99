// Package gridsource talks to the remote forecast-grid and water-grid
// services. Clients classify transport failures into the overlay's error
// taxonomy and wrap requests in a circuit breaker so a struggling
// upstream is not hammered while the user pans around.
package gridsource

import (
	"context"

	"github.com/ngmaloney/marine-overlay/internal/models"
)

// GridResponse is the payload of a forecast-grid fetch.
type GridResponse struct {
	Points []models.Sample `json:"points"`
}

// WeatherClient fetches sparse forecast samples covering a bounding box
// at a given grid resolution and forecast hour.
type WeatherClient interface {
	FetchGrid(ctx context.Context, bounds models.GridBounds, resolution float64, forecastHour int) (*GridResponse, error)
}

// WaterClient fetches the land/water classification lattice used for
// masking marine-only overlays.
type WaterClient interface {
	FetchWaterGrid(ctx context.Context, south, north, west, east, spacing float64) ([]models.WaterGridPoint, error)
}
