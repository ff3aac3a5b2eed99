package interp

import (
	"math"
	"testing"

	"github.com/ngmaloney/marine-overlay/internal/models"
)

func windSample(lat, lon, speed, direction, gusts float64) models.Sample {
	return models.Sample{
		Lat:  lat,
		Lon:  lon,
		Wind: &models.Wind{Speed: speed, Direction: direction, Gusts: gusts},
	}
}

func TestInterpolateNoQualifyingSamples(t *testing.T) {
	temp := 12.5
	set := NewSampleSet([]models.Sample{
		{Lat: 0, Lon: 0, SeaTemperature: &temp},
	})

	if _, ok := set.Interpolate(models.ModeWind, 0, 0); ok {
		t.Error("expected no wind value from a temperature-only sample")
	}
	if v, ok := set.Interpolate(models.ModeWaterTemp, 0.5, 0.5); !ok || v.Primary != temp {
		t.Errorf("water-temp = %+v ok=%v, want single sample verbatim", v, ok)
	}
}

func TestInterpolateExactMatch(t *testing.T) {
	set := NewSampleSet([]models.Sample{
		windSample(0, 0, 10, 45, 14),
		windSample(0, 1, 20, 90, 25),
		windSample(1, 0, 30, 135, 35),
	})

	// Within the snap threshold of the first sample.
	v, ok := set.Interpolate(models.ModeWind, 0.0005, 0)
	if !ok {
		t.Fatal("expected a value")
	}
	if v.Primary != 10 || v.Direction != 45 || v.Secondary != 14 {
		t.Errorf("got %+v, want the coincident sample verbatim", v)
	}
}

func TestInterpolateScalarConvexBound(t *testing.T) {
	set := NewSampleSet([]models.Sample{
		windSample(0, 0, 10, 0, 12),
		windSample(0, 1, 20, 0, 22),
		windSample(1, 0, 5, 0, 8),
		windSample(1, 1, 40, 0, 44),
	})

	v, ok := set.Interpolate(models.ModeWind, 0.3, 0.7)
	if !ok {
		t.Fatal("expected a value")
	}
	if v.Primary < 5 || v.Primary > 40 {
		t.Errorf("speed %v outside neighbor range [5, 40]", v.Primary)
	}
	if v.Secondary < 8 || v.Secondary > 44 {
		t.Errorf("gusts %v outside neighbor range [8, 44]", v.Secondary)
	}
}

func TestInterpolateMidpointIDW(t *testing.T) {
	// Equal distances, equal weights: speed is the plain mean.
	set := NewSampleSet([]models.Sample{
		windSample(0, 0, 10, 0, 12),
		windSample(0, 1, 20, 180, 22),
	})

	v, ok := set.Interpolate(models.ModeWind, 0, 0.5)
	if !ok {
		t.Fatal("expected a value")
	}
	if math.Abs(v.Primary-15) > 1e-9 {
		t.Errorf("speed = %v, want 15", v.Primary)
	}
	// Opposed equal-weight directions collapse the mean vector; the
	// pinned-down behavior is atan2(0,0) = 0.
	if v.Direction != 0 {
		t.Errorf("degenerate direction = %v, want 0", v.Direction)
	}
}

func TestInterpolateDirectionWrapSafe(t *testing.T) {
	set := NewSampleSet([]models.Sample{
		windSample(0, 0, 10, 350, 0),
		windSample(0, 1, 10, 10, 0),
	})

	v, ok := set.Interpolate(models.ModeWind, 0, 0.5)
	if !ok {
		t.Fatal("expected a value")
	}
	// Near 0, never near 180.
	diff := math.Min(v.Direction, 360-v.Direction)
	if diff > 1 {
		t.Errorf("direction = %v, want within 1° of north", v.Direction)
	}
}

func TestInterpolateUsesFourNearest(t *testing.T) {
	// A far-away outlier with an extreme speed must not contribute once
	// four closer samples qualify.
	set := NewSampleSet([]models.Sample{
		windSample(0, 0, 10, 0, 0),
		windSample(0, 0.2, 10, 0, 0),
		windSample(0.2, 0, 10, 0, 0),
		windSample(0.2, 0.2, 10, 0, 0),
		windSample(50, 50, 1000, 0, 0),
	})

	v, ok := set.Interpolate(models.ModeWind, 0.1, 0.1)
	if !ok {
		t.Fatal("expected a value")
	}
	if math.Abs(v.Primary-10) > 1e-9 {
		t.Errorf("speed = %v, outlier leaked into the neighbor set", v.Primary)
	}
}

func TestInterpolateCurrentAndWaves(t *testing.T) {
	set := NewSampleSet([]models.Sample{
		{Lat: 0, Lon: 0, Current: &models.Current{Velocity: 1.5, Direction: 90}},
		{Lat: 0, Lon: 0, Waves: &models.Wave{Height: 2, Direction: 270, Period: 8}},
		{Lat: 0, Lon: 1, Waves: &models.Wave{Height: 4, Direction: 270, Period: 12}},
	})

	cv, ok := set.Interpolate(models.ModeCurrent, 0.2, 0.2)
	if !ok || cv.Primary != 1.5 {
		t.Errorf("current = %+v ok=%v, want single sample verbatim", cv, ok)
	}
	if cv.HasSecondary {
		t.Error("current has no secondary quantity")
	}

	wv, ok := set.Interpolate(models.ModeWaves, 0, 0.5)
	if !ok {
		t.Fatal("expected a wave value")
	}
	if math.Abs(wv.Primary-3) > 1e-9 || math.Abs(wv.Secondary-10) > 1e-9 {
		t.Errorf("waves = %+v, want height 3 period 10", wv)
	}
	if wv.Direction != 270 {
		t.Errorf("wave direction = %v, want 270", wv.Direction)
	}
}

func TestCountForMode(t *testing.T) {
	temp := 10.0
	set := NewSampleSet([]models.Sample{
		windSample(0, 0, 10, 0, 0),
		windSample(0, 1, 12, 0, 0),
		{Lat: 1, Lon: 1, SeaTemperature: &temp},
	})

	if got := set.CountForMode(models.ModeWind); got != 2 {
		t.Errorf("wind count = %d, want 2", got)
	}
	if got := set.CountForMode(models.ModeWaterTemp); got != 1 {
		t.Errorf("water-temp count = %d, want 1", got)
	}
	if got := set.CountForMode(models.ModeSwell); got != 0 {
		t.Errorf("swell count = %d, want 0", got)
	}
}

func TestNilSampleSet(t *testing.T) {
	var set *SampleSet
	if set.Len() != 0 || set.CountForMode(models.ModeWind) != 0 {
		t.Error("nil set should report zero samples")
	}
	if _, ok := set.Interpolate(models.ModeWind, 0, 0); ok {
		t.Error("nil set should not produce values")
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-90, 270},
		{450, 90},
		{-720, 0},
	}
	for _, tt := range tests {
		if got := normalizeDegrees(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
