package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-co-op/gocron"

	"github.com/ngmaloney/marine-overlay/internal/config"
	"github.com/ngmaloney/marine-overlay/internal/fetch"
	"github.com/ngmaloney/marine-overlay/internal/gridsource"
	"github.com/ngmaloney/marine-overlay/internal/ui"
	"github.com/ngmaloney/marine-overlay/internal/watermask"
)

func main() {
	lat := flag.Float64("lat", 0, "Starting latitude (overrides START_LAT)")
	lon := flag.Float64("lon", 0, "Starting longitude (overrides START_LON)")
	span := flag.Float64("span", 0, "Starting view width in degrees of longitude")
	shapefile := flag.String("water-shapefile", "", "Water-bodies shapefile used to build the offline mask cache")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *lat != 0 {
		cfg.StartLat = *lat
	}
	if *lon != 0 {
		cfg.StartLon = *lon
	}
	if *span > 0 {
		cfg.StartSpan = *span
	}
	if *shapefile != "" {
		cfg.WaterShapefile = *shapefile
	}

	// The TUI owns stdout; logs go to a file next to the database.
	logger, closeLog, err := openLogger(cfg.DBPath)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	prefStore, err := config.OpenPrefStore(cfg.DBPath)
	if err != nil {
		logger.Warn("preferences unavailable", "error", err)
		prefStore = nil
	} else {
		defer prefStore.Close()
	}

	var prefs *config.Prefs
	if prefStore != nil {
		if loaded, err := prefStore.Load(); err == nil {
			prefs = &loaded
		}
	}

	maskFallback := openMaskFallback(cfg, logger)

	client := gridsource.NewHTTPClient(cfg.GridBaseURL)
	app := ui.NewApp(ui.AppOptions{
		Config:       cfg,
		Prefs:        prefs,
		PrefStore:    prefStore,
		Weather:      client,
		Water:        client,
		MaskFallback: maskFallback,
		Logger:       logger,
	})

	p := tea.NewProgram(app.Model, tea.WithAltScreen())
	app.Bind(p.Send)

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.RefreshInterval).Do(func() {
		p.Send(ui.RefreshMsg{})
	}); err != nil {
		logger.Warn("periodic refresh disabled", "error", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

// openMaskFallback provisions the offline water cache from a shapefile on
// first run and opens it as the mask fallback. The overlay works without
// it; marine modes just fail open until the live water grid loads.
func openMaskFallback(cfg *config.Config, logger *slog.Logger) fetch.MaskFallback {
	if cfg.WaterShapefile != "" {
		needed, err := watermask.NeedsProvisioning(cfg.DBPath)
		if err != nil {
			logger.Warn("water mask cache check failed", "error", err)
		} else if needed {
			logger.Info("provisioning water mask cache", "shapefile", cfg.WaterShapefile)
			if err := watermask.ProvisionCache(cfg.DBPath, cfg.WaterShapefile); err != nil {
				logger.Warn("water mask provisioning failed", "error", err)
			}
		}
	}
	store, err := watermask.OpenStore(cfg.DBPath)
	if err != nil {
		logger.Warn("offline water mask unavailable", "error", err)
		return nil
	}
	return store
}

func openLogger(dbPath string) (*slog.Logger, func(), error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "overlay-dash.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, nil))
	return logger, func() { f.Close() }, nil
}
