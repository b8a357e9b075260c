package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapView_SingleShallowQuake(t *testing.T) {
	// A depth of -5 clamps to the floor; a magnitude of 0.3 keeps the
	// minimum radius; the collapsed scale lands on the lowest color.
	quakes := []Quake{{
		ID:        "ak0261abcd",
		Lat:       61.5,
		Lon:       -150.0,
		Depth:     -5,
		Magnitude: 0.3,
		Place:     "12 km N of Anchorage, Alaska",
		Time:      time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC),
	}}

	view := BuildMapView(quakes)

	require.Len(t, view.Markers, 1)
	assert.InDelta(t, 2, view.Markers[0].Radius, 1e-9)
	assert.Equal(t, "#98ee00", view.Markers[0].Color)

	require.Len(t, view.Legend.Labels, 5)
	assert.Equal(t, FloorLabel, view.Legend.Labels[0])
	for _, label := range view.Legend.Labels[1:] {
		assert.Equal(t, "0.01", label, "every boundary collapsed onto the clamped depth")
	}
}

func TestBuildMapView_DistinctDepthBins(t *testing.T) {
	quakes := []Quake{
		{ID: "a", Depth: 1, Magnitude: 6, Place: "shallow", Time: time.Unix(0, 0)},
		{ID: "b", Depth: 100, Magnitude: 6, Place: "deep", Time: time.Unix(0, 0)},
	}

	view := BuildMapView(quakes)

	require.Len(t, view.Markers, 2)
	assert.InDelta(t, 24, view.Markers[0].Radius, 1e-9)
	assert.InDelta(t, 24, view.Markers[1].Radius, 1e-9)
	assert.Equal(t, "#98ee00", view.Markers[0].Color)
	assert.Equal(t, "#ea2c2c", view.Markers[1].Color)
	assert.NotEqual(t, view.Markers[0].Color, view.Markers[1].Color,
		"depths a bin apart must color differently")
}

func TestBuildMapView_EmptyFeed(t *testing.T) {
	view := BuildMapView(nil)

	assert.Empty(t, view.Markers)
	assert.Empty(t, view.Legend.Labels, "zero-bin legend")
	assert.Equal(t, DefaultPalette, view.Legend.Colors)
	assert.Len(t, view.BaseLayers, 3)
	assert.Len(t, view.Guides, 2)
	assert.Equal(t, DefaultCenter, view.Center)
	assert.Equal(t, DefaultZoom, view.Zoom)
	assert.Equal(t, OverlayName, view.OverlayName)
}

func TestBuildMapView_Idempotent(t *testing.T) {
	quakes := []Quake{
		{ID: "a", Lat: 1, Lon: 2, Depth: 3.7, Magnitude: 4.4, Place: "x", Time: time.Unix(1700000000, 0)},
		{ID: "b", Lat: -10, Lon: 170, Depth: 88, Magnitude: 1.1, Place: "y", Time: time.Unix(1700001000, 0)},
		{ID: "c", Lat: 40, Lon: -120, Depth: 0, Magnitude: 0.2, Place: "z", Time: time.Unix(1700002000, 0)},
	}

	first := BuildMapView(quakes)
	second := BuildMapView(quakes)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-render from the same snapshot differs (-first +second):\n%s", diff)
	}
}

func TestDefaultBaseLayers(t *testing.T) {
	layers := DefaultBaseLayers()

	require.Len(t, layers, 3)
	assert.Equal(t, []string{"Light", "Streets", "Satellite"},
		[]string{layers[0].Name, layers[1].Name, layers[2].Name})

	assert.Equal(t, 20, layers[0].MaxZoom)
	assert.Equal(t, 19, layers[1].MaxZoom)
	assert.Zero(t, layers[2].MaxZoom, "imagery layer has no zoom constraint")

	for _, layer := range layers {
		assert.NotEmpty(t, layer.Key)
		assert.NotEmpty(t, layer.Attribution, "layer %s", layer.Name)
		assert.Contains(t, layer.URLTemplate, "{z}")
	}
}

func TestAntimeridianGuides(t *testing.T) {
	guides := AntimeridianGuides()

	require.Len(t, guides, 2)
	assert.Equal(t, [2]float64{-90, 180}, guides[0].From)
	assert.Equal(t, [2]float64{90, 180}, guides[0].To)
	assert.Equal(t, [2]float64{-90, -180}, guides[1].From)
	assert.Equal(t, [2]float64{90, -180}, guides[1].To)
	for _, g := range guides {
		assert.Equal(t, "firebrick", g.Color)
		assert.Equal(t, 5, g.Weight)
	}
}
