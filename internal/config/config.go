// Package config loads dashboard configuration from the environment and
// persists view preferences in the shared SQLite database.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the overlay dashboard configuration, passed explicitly to
// whoever needs it rather than read from globals.
type Config struct {
	// GridBaseURL is the base URL of the weather/water grid service.
	GridBaseURL string

	// DBPath is the shared SQLite database for preferences and the
	// local water-mask cache.
	DBPath string

	// WaterShapefile optionally points at a water-bodies shapefile used
	// to provision the local mask cache on first run.
	WaterShapefile string

	// RefreshInterval is how often an idle dashboard re-fetches the
	// current view.
	RefreshInterval time.Duration

	// Initial view center and longitude span in degrees.
	StartLat  float64
	StartLon  float64
	StartSpan float64
}

// DBPath returns the default database location.
func DBPath() string {
	return filepath.Join("data", "marine-overlay.db")
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &Config{
		GridBaseURL:    getenvDefault("GRID_BASE_URL", "https://grid.marine-overlay.dev"),
		DBPath:         getenvDefault("OVERLAY_DB_PATH", DBPath()),
		WaterShapefile: os.Getenv("WATER_SHAPEFILE"),
	}

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.StartLat, err = parseFloat("START_LAT", "41.5")
	if err != nil {
		return nil, err
	}
	cfg.StartLon, err = parseFloat("START_LON", "-70.5")
	if err != nil {
		return nil, err
	}
	cfg.StartSpan, err = parseFloat("START_SPAN", "4")
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(getenvDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
