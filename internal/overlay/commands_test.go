package overlay

import (
	"strings"
	"testing"

	"github.com/ngmaloney/marine-overlay/internal/interp"
	"github.com/ngmaloney/marine-overlay/internal/models"
	"github.com/ngmaloney/marine-overlay/internal/viewport"
	"github.com/ngmaloney/marine-overlay/internal/watermask"
)

func testTransform() viewport.Transform {
	v := viewport.New(41.5, -70.5, 4)
	v.Resize(80, 24)
	return v.Transform()
}

func uniformWindSet(speed, direction float64) *interp.SampleSet {
	var samples []models.Sample
	for lat := 38.0; lat <= 45.0; lat++ {
		for lon := -74.0; lon <= -67.0; lon++ {
			samples = append(samples, models.Sample{
				Lat:  lat,
				Lon:  lon,
				Wind: &models.Wind{Speed: speed, Direction: direction, Gusts: speed + 5},
			})
		}
	}
	return interp.NewSampleSet(samples)
}

func TestBuildCommandsEmptySamples(t *testing.T) {
	if got := BuildCommands(nil, nil, testTransform(), models.ModeWind, models.DefaultConverters()); got != nil {
		t.Errorf("expected no commands without samples, got %d", len(got))
	}
	empty := interp.NewSampleSet(nil)
	if got := BuildCommands(empty, nil, testTransform(), models.ModeWind, models.DefaultConverters()); got != nil {
		t.Errorf("expected no commands from empty set, got %d", len(got))
	}
}

func TestBuildCommandsDrawsLattice(t *testing.T) {
	set := uniformWindSet(12, 180)
	cmds := BuildCommands(set, nil, testTransform(), models.ModeWind, models.DefaultConverters())

	if len(cmds) == 0 {
		t.Fatal("expected commands over a populated area")
	}
	// Roughly the diagonal target squared worth of glyphs, allowing for
	// margin rows and aspect.
	if len(cmds) > 600 {
		t.Errorf("command count %d implausibly dense", len(cmds))
	}
	for _, cmd := range cmds {
		// Wind from 180 blows toward the north: arrow points up.
		if cmd.Glyph != '↑' {
			t.Fatalf("glyph = %q, want ↑ for wind from south", cmd.Glyph)
		}
		if cmd.Label != "12kt" {
			t.Fatalf("label = %q, want 12kt", cmd.Label)
		}
		if cmd.SubLabel != "G17" {
			t.Fatalf("sub label = %q, want G17", cmd.SubLabel)
		}
		if !strings.HasPrefix(cmd.Color, "#") {
			t.Fatalf("color = %q, want hex ramp color", cmd.Color)
		}
	}
}

func TestBuildCommandsClipsOffscreen(t *testing.T) {
	set := uniformWindSet(10, 0)
	tr := testTransform()
	for _, cmd := range BuildCommands(set, nil, tr, models.ModeWind, models.DefaultConverters()) {
		if !tr.OnScreen(cmd.X, cmd.Y, screenMargin) {
			t.Fatalf("command at (%v, %v) outside padded surface", cmd.X, cmd.Y)
		}
	}
}

func TestBuildCommandsMasksMarineModes(t *testing.T) {
	height := 2.0
	var samples []models.Sample
	for lat := 38.0; lat <= 45.0; lat++ {
		for lon := -74.0; lon <= -67.0; lon++ {
			samples = append(samples, models.Sample{
				Lat:   lat,
				Lon:   lon,
				Waves: &models.Wave{Height: height, Direction: 90, Period: 8},
			})
		}
	}
	set := interp.NewSampleSet(samples)

	allLand := watermask.NewMask([]models.WaterGridPoint{
		{Lat: 41.5, Lon: -70.5, Type: models.SurfaceLand},
	})
	if got := BuildCommands(set, allLand, testTransform(), models.ModeWaves, models.DefaultConverters()); len(got) != 0 {
		t.Errorf("waves over land drew %d commands, want 0", len(got))
	}

	// Empty mask fails open.
	if got := BuildCommands(set, watermask.NewMask(nil), testTransform(), models.ModeWaves, models.DefaultConverters()); len(got) == 0 {
		t.Error("empty mask must not suppress marine rendering")
	}

	// Wind ignores the mask entirely.
	windSet := uniformWindSet(10, 0)
	if got := BuildCommands(windSet, allLand, testTransform(), models.ModeWind, models.DefaultConverters()); len(got) == 0 {
		t.Error("wind must render over land")
	}
}

func TestDisplayDirectionSemantics(t *testing.T) {
	// From-semantics flip 180, current to-semantics do not.
	if got := displayDirection(models.ModeWind, 180); got != 0 {
		t.Errorf("wind from 180 displays as %v, want 0", got)
	}
	if got := displayDirection(models.ModeSwell, 0); got != 180 {
		t.Errorf("swell from 0 displays as %v, want 180", got)
	}
	if got := displayDirection(models.ModeCurrent, 90); got != 90 {
		t.Errorf("current toward 90 displays as %v, want 90", got)
	}
}

func TestArrowGlyph(t *testing.T) {
	tests := []struct {
		deg  float64
		want rune
	}{
		{0, '↑'},
		{45, '↗'},
		{90, '→'},
		{180, '↓'},
		{270, '←'},
		{359, '↑'},
		{22, '↑'},
		{23, '↗'},
	}
	for _, tt := range tests {
		if got := arrowGlyph(tt.deg); got != tt.want {
			t.Errorf("arrowGlyph(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}

func TestRampColorOrdering(t *testing.T) {
	calm := rampColor(models.ModeWind, 3)
	gale := rampColor(models.ModeWind, 40)
	if calm == gale {
		t.Error("calm and gale winds should map to different ramp colors")
	}
	if gale != rampTop {
		t.Errorf("gale color = %q, want ramp top %q", gale, rampTop)
	}
}

func TestCommandsUseConverters(t *testing.T) {
	set := uniformWindSet(10, 180)
	cmds := BuildCommands(set, nil, testTransform(), models.ModeWind, models.ImperialConverters())
	if len(cmds) == 0 {
		t.Fatal("expected commands")
	}
	if cmds[0].Label != "12mph" {
		t.Errorf("label = %q, want 12mph for 10kt imperial", cmds[0].Label)
	}
}

func uniformCurrentSet(velocity, direction float64) *interp.SampleSet {
	var samples []models.Sample
	for lat := 38.0; lat <= 45.0; lat++ {
		for lon := -74.0; lon <= -67.0; lon++ {
			samples = append(samples, models.Sample{
				Lat:     lat,
				Lon:     lon,
				Current: &models.Current{Velocity: velocity, Direction: direction},
			})
		}
	}
	return interp.NewSampleSet(samples)
}

// Current speed shares the wind converter's unit family, so toggling
// units converts it too.
func TestCurrentLabelFollowsConverters(t *testing.T) {
	set := uniformCurrentSet(2, 90)

	cmds := BuildCommands(set, nil, testTransform(), models.ModeCurrent, models.DefaultConverters())
	if len(cmds) == 0 {
		t.Fatal("expected commands")
	}
	if cmds[0].Label != "2.0kt" {
		t.Errorf("label = %q, want 2.0kt", cmds[0].Label)
	}

	cmds = BuildCommands(set, nil, testTransform(), models.ModeCurrent, models.ImperialConverters())
	if cmds[0].Label != "2.3mph" {
		t.Errorf("label = %q, want 2.3mph for 2kt imperial", cmds[0].Label)
	}
}
