package models

import "fmt"

// DisplayMode selects which sample quantity the overlay renders.
type DisplayMode string

const (
	ModeWind      DisplayMode = "wind"
	ModeWaves     DisplayMode = "waves"
	ModeSwell     DisplayMode = "swell"
	ModeCurrent   DisplayMode = "current"
	ModeWaterTemp DisplayMode = "water-temp"
)

// DisplayModes lists all modes in selector order.
var DisplayModes = []DisplayMode{ModeWind, ModeWaves, ModeSwell, ModeCurrent, ModeWaterTemp}

// ParseDisplayMode validates a mode string, e.g. from saved preferences.
func ParseDisplayMode(s string) (DisplayMode, error) {
	for _, m := range DisplayModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

// IsMarine reports whether the mode renders an ocean-only quantity.
// Wind is valid everywhere; everything else only exists over ocean and
// gets masked against the water grid.
func (m DisplayMode) IsMarine() bool {
	return m != ModeWind
}

// Label returns the human-readable name shown in the mode selector.
func (m DisplayMode) Label() string {
	switch m {
	case ModeWind:
		return "Wind"
	case ModeWaves:
		return "Waves"
	case ModeSwell:
		return "Swell"
	case ModeCurrent:
		return "Current"
	case ModeWaterTemp:
		return "Water Temp"
	}
	return string(m)
}
