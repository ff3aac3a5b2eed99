package overlay

import (
	"fmt"
	"math"

	"github.com/ngmaloney/marine-overlay/internal/gridplan"
	"github.com/ngmaloney/marine-overlay/internal/interp"
	"github.com/ngmaloney/marine-overlay/internal/models"
	"github.com/ngmaloney/marine-overlay/internal/viewport"
	"github.com/ngmaloney/marine-overlay/internal/watermask"
)

// DrawCommand places one styled glyph with labels at surface coordinates.
// Color is a hex color from the magnitude ramp; the surface adapter maps
// it to whatever styling its host supports.
type DrawCommand struct {
	X, Y     float64
	Glyph    rune
	Label    string
	SubLabel string
	Color    string
}

// screenMargin is how many cells beyond the surface edge lattice points
// are still drawn, so glyphs straddling the border do not pop in and out
// while panning.
const screenMargin = 2

// arrowGlyphs are eight-direction arrows indexed clockwise from north.
var arrowGlyphs = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// BuildCommands walks the render lattice over the visible bounds and
// produces one draw command per point that has an interpolated value and
// passes the water mask. The lattice spacing comes straight from the
// diagonal rule, not the quantized fetch ladder, and is anchored to
// absolute multiples of the spacing so it lines up with the mask lattice.
//
// Pure: no state is read beyond the arguments, which makes the whole
// draw path testable without a surface.
func BuildCommands(samples *interp.SampleSet, mask *watermask.Mask, tr viewport.Transform, mode models.DisplayMode, conv models.Converters) []DrawCommand {
	if samples.Len() == 0 || !tr.Bounds.Valid() {
		return nil
	}
	spacing := gridplan.ComputeRawSpacing(tr.Bounds)
	if spacing <= 0 {
		return nil
	}

	var commands []DrawCommand
	startLat := math.Floor(tr.Bounds.South/spacing-1) * spacing
	startLon := math.Floor(tr.Bounds.West/spacing-1) * spacing
	for lat := startLat; lat <= tr.Bounds.North+spacing; lat += spacing {
		for lon := startLon; lon <= tr.Bounds.East+spacing; lon += spacing {
			x, y := tr.Project(lat, lon)
			if !tr.OnScreen(x, y, screenMargin) {
				continue
			}
			if !mask.Show(mode, lat, lon) {
				continue
			}
			value, ok := samples.Interpolate(mode, lat, lon)
			if !ok {
				continue
			}
			commands = append(commands, command(x, y, mode, value, conv))
		}
	}
	return commands
}

func command(x, y float64, mode models.DisplayMode, v interp.Value, conv models.Converters) DrawCommand {
	cmd := DrawCommand{
		X:     x,
		Y:     y,
		Glyph: '•',
		Color: rampColor(mode, v.Primary),
	}
	if v.HasDirection {
		cmd.Glyph = arrowGlyph(displayDirection(mode, v.Direction))
	}

	switch mode {
	case models.ModeWind:
		cmd.Label = fmt.Sprintf("%.0f%s", conv.Wind.Convert(v.Primary), conv.Wind.Unit)
		if v.HasSecondary && v.Secondary > v.Primary {
			cmd.SubLabel = fmt.Sprintf("G%.0f", conv.Wind.Convert(v.Secondary))
		}
	case models.ModeWaves, models.ModeSwell:
		cmd.Label = fmt.Sprintf("%.1f%s", conv.Height.Convert(v.Primary), conv.Height.Unit)
		if v.HasSecondary {
			cmd.SubLabel = fmt.Sprintf("%.0fs", v.Secondary)
		}
	case models.ModeCurrent:
		// Current velocity is in knots, the wind converter's unit family.
		cmd.Label = fmt.Sprintf("%.1f%s", conv.Wind.Convert(v.Primary), conv.Wind.Unit)
	case models.ModeWaterTemp:
		cmd.Label = fmt.Sprintf("%.1f%s", conv.Temp.Convert(v.Primary), conv.Temp.Unit)
	}
	return cmd
}

// displayDirection converts a stored direction to the direction the glyph
// points. Wind, waves and swell store where the phenomenon comes FROM, so
// the arrow flips 180° to point where it is going; current already stores
// the set direction.
func displayDirection(mode models.DisplayMode, direction float64) float64 {
	if mode == models.ModeCurrent {
		return direction
	}
	return math.Mod(direction+180, 360)
}

// arrowGlyph snaps a compass direction to the nearest of eight arrows.
// North points up the screen.
func arrowGlyph(deg float64) rune {
	idx := int(math.Round(deg/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return arrowGlyphs[idx]
}

// rampColor maps a magnitude to a hex color, calm blue through
// strong red. Thresholds differ per quantity.
func rampColor(mode models.DisplayMode, magnitude float64) string {
	var stops []rampStop
	switch mode {
	case models.ModeWind:
		stops = windRamp
	case models.ModeWaves, models.ModeSwell:
		stops = waveRamp
	case models.ModeCurrent:
		stops = currentRamp
	case models.ModeWaterTemp:
		stops = tempRamp
	}
	for _, stop := range stops {
		if magnitude < stop.below {
			return stop.color
		}
	}
	return rampTop
}

type rampStop struct {
	below float64
	color string
}

const rampTop = "#FF4040"

var (
	windRamp = []rampStop{ // knots
		{8, "#4FC3F7"},
		{16, "#6BCF7F"},
		{24, "#FFD93D"},
		{34, "#FF8C42"},
	}
	waveRamp = []rampStop{ // meters
		{0.8, "#4FC3F7"},
		{1.8, "#6BCF7F"},
		{3.0, "#FFD93D"},
		{5.0, "#FF8C42"},
	}
	currentRamp = []rampStop{ // knots
		{0.5, "#4FC3F7"},
		{1.0, "#6BCF7F"},
		{2.0, "#FFD93D"},
		{3.5, "#FF8C42"},
	}
	tempRamp = []rampStop{ // celsius
		{8, "#4FC3F7"},
		{14, "#6BCF7F"},
		{20, "#FFD93D"},
		{26, "#FF8C42"},
	}
)
