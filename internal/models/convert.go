package models

// Converter turns a raw quantity into a display value with a unit label.
// Converters are pure functions supplied by the settings collaborator;
// swapping them triggers a re-render, never a re-fetch.
type Converter struct {
	Convert func(float64) float64
	Unit    string
}

// Converters bundles the unit converters the overlay needs. Wind and
// current speeds arrive in knots, heights in meters, temperatures in
// celsius.
type Converters struct {
	Wind   Converter
	Height Converter
	Temp   Converter
}

// DefaultConverters returns pass-through converters in source units.
func DefaultConverters() Converters {
	return Converters{
		Wind:   Converter{Convert: identity, Unit: "kt"},
		Height: Converter{Convert: identity, Unit: "m"},
		Temp:   Converter{Convert: identity, Unit: "°C"},
	}
}

// ImperialConverters returns converters for mph, feet and fahrenheit.
func ImperialConverters() Converters {
	return Converters{
		Wind:   Converter{Convert: func(kt float64) float64 { return kt * 1.15078 }, Unit: "mph"},
		Height: Converter{Convert: func(m float64) float64 { return m * 3.28084 }, Unit: "ft"},
		Temp:   Converter{Convert: func(c float64) float64 { return c*9/5 + 32 }, Unit: "°F"},
	}
}

func identity(v float64) float64 { return v }
