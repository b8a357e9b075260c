package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLegend(t *testing.T) {
	scale := DepthScale{
		Palette:    DefaultPalette,
		Boundaries: []float64{0.5, 2, 5.128, 10, 20.8},
	}

	legend := BuildLegend(scale)

	assert.Equal(t, "Depth (km)", legend.Title)
	assert.Equal(t, DefaultPalette, legend.Colors)
	assert.Equal(t, []string{"0.01 +", "2.00", "5.13", "10.00", "20.80"}, legend.Labels)
}

func TestBuildLegend_FloorLabelOverridesFirstBoundary(t *testing.T) {
	// The computed first boundary is 37.2, but the legend always shows the
	// floor label in its place.
	scale := DepthScale{
		Palette:    DefaultPalette,
		Boundaries: []float64{37.2, 40, 50, 60, 70},
	}

	legend := BuildLegend(scale)

	require.NotEmpty(t, legend.Labels)
	assert.Equal(t, FloorLabel, legend.Labels[0])
	assert.NotContains(t, legend.Labels, "37.20")
}

func TestBuildLegend_ZeroBins(t *testing.T) {
	legend := BuildLegend(DepthScale{Palette: DefaultPalette})

	assert.Equal(t, "Depth (km)", legend.Title)
	assert.Equal(t, DefaultPalette, legend.Colors)
	assert.Empty(t, legend.Labels)
}

func TestBuildLegend_CopiesPalette(t *testing.T) {
	palette := []string{"#111111", "#222222", "#333333"}
	legend := BuildLegend(DepthScale{Palette: palette, Boundaries: []float64{1, 2}})

	palette[0] = "#mutated"

	assert.Equal(t, "#111111", legend.Colors[0])
}
