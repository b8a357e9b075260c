package domain

import "strconv"

// LegendTitle is the fixed legend heading.
const LegendTitle = "Depth (km)"

// FloorLabel is what the first boundary always displays as: it marks "at or
// above the minimum floor", not a true quantile edge.
const FloorLabel = "0.01 +"

// Legend is the static depth-key content: a title, the palette in order for
// the gradient bar, and one label per scale boundary.
type Legend struct {
	Title  string
	Colors []string
	Labels []string
}

// BuildLegend derives the legend from a depth scale. The first label is the
// literal floor label regardless of the computed boundary; the rest show two
// decimals. An empty scale yields a legend with zero labels.
func BuildLegend(scale DepthScale) Legend {
	labels := make([]string, 0, len(scale.Boundaries))
	for i, b := range scale.Boundaries {
		if i == 0 {
			labels = append(labels, FloorLabel)
			continue
		}
		labels = append(labels, strconv.FormatFloat(b, 'f', 2, 64))
	}
	return Legend{
		Title:  LegendTitle,
		Colors: append([]string(nil), scale.Palette...),
		Labels: labels,
	}
}
