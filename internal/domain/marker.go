package domain

import (
	"fmt"
	"html"
	"strconv"
)

// popupTimeLayout renders origin times as medium date + short time, always UTC.
const popupTimeLayout = "Jan 2, 2006, 3:04 PM"

// MarkerFillOpacity is the fixed fill opacity for every quake marker; markers
// have no stroke outline.
const MarkerFillOpacity = 0.8

// Radius derives a marker radius from magnitude: a floor of 2 below 0.5 keeps
// near-zero and negative magnitudes visible, above that it scales linearly.
func Radius(magnitude float64) float64 {
	if magnitude < 0.5 {
		return 2
	}
	return magnitude * 4
}

// Marker is the plain visual descriptor for one quake: position, radius,
// color, popup. It carries no widget state; binding to the map widget happens
// in a rendering adapter.
type Marker struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
	Popup  string  `json:"popup"`
}

// BuildMarkers converts quakes into markers in feed order, sizing by
// magnitude and coloring by effective depth through the scale.
func BuildMarkers(quakes []Quake, scale DepthScale) []Marker {
	markers := make([]Marker, len(quakes))
	for i, q := range quakes {
		markers[i] = Marker{
			Lat:    q.Lat,
			Lon:    q.Lon,
			Radius: Radius(q.Magnitude),
			Color:  scale.ColorFor(EffectiveDepth(q.Depth)),
			Popup:  popupHTML(q),
		}
	}
	return markers
}

// popupHTML formats the popup payload: place, magnitude, origin time in UTC.
// The layout is part of the visual-encoding contract; only the place text is
// escaped since it is the one free-form field.
func popupHTML(q Quake) string {
	return fmt.Sprintf("%s<hr>Magnitude: %s<hr>%s UTC",
		html.EscapeString(q.Place),
		formatMagnitude(q.Magnitude),
		q.Time.UTC().Format(popupTimeLayout))
}

// formatMagnitude prints magnitudes without trailing zeros, so 6 reads "6"
// and 5.30 reads "5.3".
func formatMagnitude(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
