// Package interp computes interpolated overlay values from sparse forecast
// samples using inverse-distance weighting. Directional quantities are
// combined as unit vectors so averages behave at the 0/360 wrap.
package interp

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/ngmaloney/marine-overlay/internal/models"
)

const (
	// snapThreshold is the degree distance under which a target point is
	// considered coincident with a sample and takes its value verbatim.
	// Also keeps the 1/d² weights from blowing up.
	snapThreshold = 0.001

	// neighborCount is how many nearest qualifying samples contribute.
	neighborCount = 4
)

// Value is an interpolated quantity at one point. Primary is the main
// magnitude for the display mode (speed, height, velocity, temperature);
// Secondary carries gusts or period where the mode has one.
type Value struct {
	Primary      float64
	Secondary    float64
	HasSecondary bool
	Direction    float64 // degrees [0,360)
	HasDirection bool
}

// sampleEntry adapts a sample to the rtreego spatial interface.
// Coordinates are (lon, lat), x before y.
type sampleEntry struct {
	sample *models.Sample
	rect   rtreego.Rect
}

func (e *sampleEntry) Bounds() rtreego.Rect { return e.rect }

// SampleSet is an immutable snapshot of forecast samples with a per-mode
// spatial index. The fetch coordinator builds one per committed fetch and
// hands the same set to every reader; nothing mutates it afterwards.
type SampleSet struct {
	samples []models.Sample
	byMode  map[models.DisplayMode]*modeIndex
}

type modeIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewSampleSet indexes samples for interpolation. Each display mode gets
// its own R-tree holding only the samples that carry that mode's field,
// so nearest-neighbor queries never return unusable points.
func NewSampleSet(samples []models.Sample) *SampleSet {
	set := &SampleSet{
		samples: samples,
		byMode:  make(map[models.DisplayMode]*modeIndex, len(models.DisplayModes)),
	}
	for _, mode := range models.DisplayModes {
		idx := &modeIndex{tree: rtreego.NewTree(2, 2, 25)}
		for i := range samples {
			if _, ok := extract(&samples[i], mode); !ok {
				continue
			}
			point := rtreego.Point{samples[i].Lon, samples[i].Lat}
			idx.tree.Insert(&sampleEntry{sample: &samples[i], rect: point.ToRect(1e-9)})
			idx.count++
		}
		set.byMode[mode] = idx
	}
	return set
}

// Len returns the total number of samples in the set.
func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.samples)
}

// CountForMode returns how many samples carry the field the mode needs.
func (s *SampleSet) CountForMode(mode models.DisplayMode) int {
	if s == nil {
		return 0
	}
	idx, ok := s.byMode[mode]
	if !ok {
		return 0
	}
	return idx.count
}

// Interpolate estimates the mode's quantity at (lat, lon) from the nearest
// qualifying samples. Returns false when no sample carries the field.
//
// Scalars are inverse-distance weighted (power 2) and therefore stay
// within the min/max of the contributing neighbors. Directions are
// averaged as unit vectors: two equal-weight samples at 350° and 10° come
// out near 0°, never 180°. Diametrically opposed equal-weight directions
// collapse the mean vector to zero; atan2 then yields 0, which we keep.
func (s *SampleSet) Interpolate(mode models.DisplayMode, lat, lon float64) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	idx, ok := s.byMode[mode]
	if !ok || idx.count == 0 {
		return Value{}, false
	}

	target := rtreego.Point{lon, lat}
	neighbors := idx.tree.NearestNeighbors(neighborCount, target)

	type weighted struct {
		value    Value
		distance float64
	}
	picked := make([]weighted, 0, neighborCount)
	for _, spatial := range neighbors {
		entry, ok := spatial.(*sampleEntry)
		if !ok || entry == nil {
			continue
		}
		value, ok := extract(entry.sample, mode)
		if !ok {
			continue
		}
		d := math.Hypot(entry.sample.Lat-lat, entry.sample.Lon-lon)
		if d < snapThreshold {
			// Coincident with a sample: take it verbatim.
			return value, true
		}
		picked = append(picked, weighted{value: value, distance: d})
	}
	if len(picked) == 0 {
		return Value{}, false
	}
	if len(picked) == 1 {
		return picked[0].value, true
	}

	var (
		weightSum    float64
		primarySum   float64
		secondarySum float64
		sinSum       float64
		cosSum       float64
		hasSecondary bool
		hasDirection bool
	)
	for _, w := range picked {
		weight := 1 / (w.distance * w.distance)
		weightSum += weight
		primarySum += weight * w.value.Primary
		if w.value.HasSecondary {
			secondarySum += weight * w.value.Secondary
			hasSecondary = true
		}
		if w.value.HasDirection {
			rad := w.value.Direction * math.Pi / 180
			sinSum += weight * math.Sin(rad)
			cosSum += weight * math.Cos(rad)
			hasDirection = true
		}
	}

	out := Value{
		Primary:      primarySum / weightSum,
		HasSecondary: hasSecondary,
		HasDirection: hasDirection,
	}
	if hasSecondary {
		out.Secondary = secondarySum / weightSum
	}
	if hasDirection {
		out.Direction = normalizeDegrees(math.Atan2(sinSum, cosSum) * 180 / math.Pi)
	}
	return out, true
}

// extract pulls the mode's quantity out of a sample, reporting false when
// the sample does not carry that field.
func extract(s *models.Sample, mode models.DisplayMode) (Value, bool) {
	switch mode {
	case models.ModeWind:
		if s.Wind == nil {
			return Value{}, false
		}
		return Value{
			Primary:      s.Wind.Speed,
			Secondary:    s.Wind.Gusts,
			HasSecondary: true,
			Direction:    s.Wind.Direction,
			HasDirection: true,
		}, true
	case models.ModeWaves:
		return waveValue(s.Waves)
	case models.ModeSwell:
		return waveValue(s.Swell)
	case models.ModeCurrent:
		if s.Current == nil {
			return Value{}, false
		}
		return Value{
			Primary:      s.Current.Velocity,
			Direction:    s.Current.Direction,
			HasDirection: true,
		}, true
	case models.ModeWaterTemp:
		if s.SeaTemperature == nil {
			return Value{}, false
		}
		return Value{Primary: *s.SeaTemperature}, true
	}
	return Value{}, false
}

func waveValue(w *models.Wave) (Value, bool) {
	if w == nil {
		return Value{}, false
	}
	return Value{
		Primary:      w.Height,
		Secondary:    w.Period,
		HasSecondary: true,
		Direction:    w.Direction,
		HasDirection: true,
	}, true
}

// normalizeDegrees maps an angle to [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
