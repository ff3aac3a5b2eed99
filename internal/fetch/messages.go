package fetch

import (
	"errors"
	"fmt"

	"github.com/ngmaloney/marine-overlay/internal/gridsource"
	"github.com/ngmaloney/marine-overlay/internal/models"
)

// User-visible messages for the fetch error taxonomy. None of these are
// fatal; the overlay keeps rendering whatever it last had.
const (
	msgNoDataInArea  = "No forecast data available in this area"
	msgTimeout       = "The weather service is busy, please try again"
	msgRateLimited   = "Too many requests, please wait a moment and retry"
	msgUnavailable   = "The weather service is temporarily unavailable"
	msgOffline       = "You appear to be offline"
	msgGenericFailed = "Could not load forecast data"
)

// messageForError maps a fetch failure to its user-visible message.
func messageForError(err error) string {
	switch {
	case errors.Is(err, gridsource.ErrTimeout):
		return msgTimeout
	case errors.Is(err, gridsource.ErrRateLimited):
		return msgRateLimited
	case errors.Is(err, gridsource.ErrUnavailable):
		return msgUnavailable
	case errors.Is(err, gridsource.ErrOffline):
		return msgOffline
	default:
		return msgGenericFailed
	}
}

// messageForMode is shown when samples exist but none carry the active
// mode's field. Marine quantities only exist over open ocean, which is
// worth saying; wind is available everywhere, so its absence is plain
// missing data.
func messageForMode(mode models.DisplayMode) string {
	if mode.IsMarine() {
		return fmt.Sprintf("No %s data here (marine data is only available over open ocean)", mode.Label())
	}
	return fmt.Sprintf("No %s data available in this area", mode.Label())
}
