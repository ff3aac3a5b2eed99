package models

// Wind holds wind conditions at a sample point.
// Direction is degrees 0-360, "from" semantics.
type Wind struct {
	Speed     float64 `json:"speed"`     // knots
	Direction float64 `json:"direction"` // degrees, direction the wind blows from
	Gusts     float64 `json:"gusts"`     // knots
}

// Wave holds a wave or swell component at a sample point.
// Direction is degrees 0-360, "from" semantics.
type Wave struct {
	Height    float64 `json:"height"`    // meters
	Direction float64 `json:"direction"` // degrees, direction the waves come from
	Period    float64 `json:"period"`    // seconds
}

// Current holds surface current conditions at a sample point.
// Direction is degrees 0-360, "to" semantics (where the water flows toward).
type Current struct {
	Velocity  float64 `json:"velocity"`  // knots
	Direction float64 `json:"direction"` // degrees, direction the current sets toward
}

// Sample is one forecast sample at a geographic point. Every field other
// than the coordinates is optional; the upstream grid source only returns
// the quantities it has for that point (marine fields exist over ocean only).
//
// Samples are read-only once fetched. The fetch coordinator owns the
// collection and replaces it wholesale; renderers share it by reference
// and must never mutate it.
type Sample struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	Wind           *Wind    `json:"wind,omitempty"`
	Waves          *Wave    `json:"waves,omitempty"`
	Swell          *Wave    `json:"swell,omitempty"`
	Current        *Current `json:"current,omitempty"`
	SeaTemperature *float64 `json:"seaTemperature,omitempty"` // celsius
}
