package config

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ngmaloney/marine-overlay/internal/database"
	"github.com/ngmaloney/marine-overlay/internal/models"
)

// Prefs are the view preferences restored across sessions.
type Prefs struct {
	Mode         models.DisplayMode
	ForecastHour int
	Imperial     bool
}

// DefaultPrefs returns the out-of-the-box view.
func DefaultPrefs() Prefs {
	return Prefs{Mode: models.ModeWind}
}

// PrefStore persists Prefs in SQLite. It is the injected persistence
// collaborator: callers construct it and pass it in; nothing reads
// preferences through package state.
type PrefStore struct {
	db *sql.DB
}

// OpenPrefStore opens (and if necessary creates) the preference table.
func OpenPrefStore(dbPath string) (*PrefStore, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS overlay_prefs (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			display_mode TEXT NOT NULL,
			forecast_hour INTEGER NOT NULL,
			imperial INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating overlay_prefs table: %w", err)
	}
	return &PrefStore{db: db}, nil
}

// Close releases the database handle.
func (s *PrefStore) Close() error {
	return s.db.Close()
}

// Load returns the saved preferences, or defaults when nothing was saved
// yet or the saved mode is no longer valid.
func (s *PrefStore) Load() (Prefs, error) {
	var (
		mode     string
		hour     int
		imperial int
	)
	err := s.db.QueryRow("SELECT display_mode, forecast_hour, imperial FROM overlay_prefs WHERE id = 1").
		Scan(&mode, &hour, &imperial)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPrefs(), nil
	}
	if err != nil {
		return DefaultPrefs(), fmt.Errorf("loading preferences: %w", err)
	}

	parsed, err := models.ParseDisplayMode(mode)
	if err != nil {
		return DefaultPrefs(), nil
	}
	return Prefs{Mode: parsed, ForecastHour: hour, Imperial: imperial != 0}, nil
}

// Save upserts the preferences.
func (s *PrefStore) Save(p Prefs) error {
	imperial := 0
	if p.Imperial {
		imperial = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO overlay_prefs (id, display_mode, forecast_hour, imperial)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_mode = excluded.display_mode,
			forecast_hour = excluded.forecast_hour,
			imperial = excluded.imperial
	`, string(p.Mode), p.ForecastHour, imperial)
	if err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}
