package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadius(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		want      float64
	}{
		{"zero magnitude floors", 0, 2},
		{"negative magnitude floors", -0.2, 2},
		{"below threshold floors", 0.3, 2},
		{"just below threshold floors", 0.49, 2},
		{"threshold scales linearly", 0.5, 2},
		{"unit magnitude", 1, 4},
		{"major quake", 6, 24},
		{"great quake", 9.1, 36.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Radius(tt.magnitude), 1e-9)
		})
	}
}

func TestBuildMarkers(t *testing.T) {
	scale := DepthScale{
		Palette:    DefaultPalette,
		Boundaries: []float64{1, 20.8, 40.6, 60.4, 80.2},
	}
	quakes := []Quake{
		{
			ID:        "us7000abcd",
			Lat:       38.82,
			Lon:       -122.76,
			Depth:     1,
			Magnitude: 6,
			Place:     "8km W of Cobb, California",
			Time:      time.Date(2026, time.March, 14, 15, 9, 0, 0, time.UTC),
		},
		{
			ID:        "us7000efgh",
			Lat:       -17.95,
			Lon:       -178.43,
			Depth:     100,
			Magnitude: 0.3,
			Place:     "Fiji region",
			Time:      time.Date(2026, time.March, 14, 2, 30, 0, 0, time.UTC),
		},
	}

	markers := BuildMarkers(quakes, scale)

	require.Len(t, markers, 2)

	assert.Equal(t, 38.82, markers[0].Lat)
	assert.Equal(t, -122.76, markers[0].Lon)
	assert.InDelta(t, 24, markers[0].Radius, 1e-9)
	assert.Equal(t, "#98ee00", markers[0].Color)
	assert.Equal(t, "8km W of Cobb, California<hr>Magnitude: 6<hr>Mar 14, 2026, 3:09 PM UTC", markers[0].Popup)

	assert.InDelta(t, 2, markers[1].Radius, 1e-9, "sub-threshold magnitude keeps the floor radius")
	assert.Equal(t, "#ea2c2c", markers[1].Color, "deepest bin")
	assert.Equal(t, "Fiji region<hr>Magnitude: 0.3<hr>Mar 14, 2026, 2:30 AM UTC", markers[1].Popup)
}

func TestBuildMarkers_ClampsDepthBeforeLookup(t *testing.T) {
	scale := BuildDepthScale([]float64{DepthFloor}, DefaultPalette)
	quakes := []Quake{{Depth: -5, Magnitude: 0.3, Place: "test", Time: time.Unix(0, 0)}}

	markers := BuildMarkers(quakes, scale)

	require.Len(t, markers, 1)
	assert.Equal(t, "#98ee00", markers[0].Color, "clamped depth lands in the lowest bin")
	assert.InDelta(t, 2, markers[0].Radius, 1e-9)
}

func TestBuildMarkers_Empty(t *testing.T) {
	markers := BuildMarkers(nil, DepthScale{Palette: DefaultPalette})

	assert.Empty(t, markers)
}

func TestPopupHTML(t *testing.T) {
	t.Run("formats place, magnitude, and UTC time", func(t *testing.T) {
		q := Quake{
			Place:     "63 km SE of Sand Point, Alaska",
			Magnitude: 5.3,
			Time:      time.Date(2026, time.January, 2, 0, 5, 0, 0, time.UTC),
		}

		assert.Equal(t, "63 km SE of Sand Point, Alaska<hr>Magnitude: 5.3<hr>Jan 2, 2026, 12:05 AM UTC", popupHTML(q))
	})

	t.Run("converts non-UTC times", func(t *testing.T) {
		loc := time.FixedZone("UTC-8", -8*60*60)
		q := Quake{
			Place:     "offshore",
			Magnitude: 2,
			Time:      time.Date(2026, time.June, 30, 16, 45, 0, 0, loc),
		}

		assert.Equal(t, "offshore<hr>Magnitude: 2<hr>Jul 1, 2026, 12:45 AM UTC", popupHTML(q))
	})

	t.Run("escapes the place text", func(t *testing.T) {
		q := Quake{Place: `<b>bold & "quoted"</b>`, Magnitude: 1, Time: time.Unix(0, 0)}

		popup := popupHTML(q)
		assert.Contains(t, popup, "&lt;b&gt;bold &amp; &#34;quoted&#34;&lt;/b&gt;")
		assert.NotContains(t, popup, "<b>")
	})
}

func TestFormatMagnitude(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      string
	}{
		{6, "6"},
		{5.3, "5.3"},
		{0.35, "0.35"},
		{0, "0"},
		{-0.2, "-0.2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMagnitude(tt.magnitude))
	}
}
