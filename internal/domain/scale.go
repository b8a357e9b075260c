package domain

import (
	"math"
	"sort"
)

// DepthFloor replaces non-positive depths so every event participates in the
// quantile scale and stays plottable.
const DepthFloor = 0.01

// DefaultPalette orders the depth colors shallow to deep.
var DefaultPalette = []string{"#98ee00", "#d4ee00", "#eecc00", "#ee9c00", "#ea822c", "#ea2c2c"}

// EffectiveDepth clamps non-positive depths to DepthFloor. Positive depths
// pass through unchanged.
func EffectiveDepth(depth float64) float64 {
	if depth <= 0 {
		return DepthFloor
	}
	return depth
}

// DepthScale maps effective depths to palette colors via quantile boundaries.
// Boundaries are monotonically non-decreasing and number len(Palette)-1; a
// scale built from an empty depth set has no boundaries at all.
type DepthScale struct {
	Palette    []string
	Boundaries []float64
}

// BuildDepthScale computes the color scale for one render pass.
//
// Boundaries are type-7 quantiles (linear interpolation between order
// statistics, the R default) at probabilities k/(len(palette)-1) for
// k = 0..len(palette)-2, so the first boundary is the minimum effective
// depth. Duplicate depths collapse boundaries onto each other, which is fine:
// lookup still resolves to the lowest matching bin.
func BuildDepthScale(depths []float64, palette []string) DepthScale {
	s := DepthScale{Palette: palette}
	bins := len(palette) - 1
	if len(depths) == 0 || bins < 1 {
		return s
	}

	sorted := append([]float64(nil), depths...)
	sort.Float64s(sorted)

	s.Boundaries = make([]float64, bins)
	for k := 0; k < bins; k++ {
		s.Boundaries[k] = quantile(sorted, float64(k)/float64(bins))
	}
	return s
}

// quantile returns the type-7 quantile of sorted at probability p in [0, 1].
func quantile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// ColorFor maps an effective depth to its palette color: the color of the
// first boundary the depth does not exceed, or the last color past the final
// boundary. With no boundaries (empty feed) every depth maps to the first
// color, keeping degenerate input well-defined.
func (s DepthScale) ColorFor(depth float64) string {
	if len(s.Boundaries) == 0 {
		return s.Palette[0]
	}
	for i, b := range s.Boundaries {
		if depth <= b {
			return s.Palette[i]
		}
	}
	return s.Palette[len(s.Palette)-1]
}
