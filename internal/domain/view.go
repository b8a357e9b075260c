package domain

// Initial view: centered on the continental US, zoomed out enough to show
// both oceans' seismic belts.
var DefaultCenter = [2]float64{39.8283, -98.5785}

// DefaultZoom is the initial zoom level.
const DefaultZoom = 3

// OverlayName labels the single marker overlay in the layer control.
const OverlayName = "Earthquakes"

// TileLayer describes one base tile provider. MaxZoom 0 means the provider's
// own default applies. Key is a stable identifier used for tile-proxy routing
// and never shown to users.
type TileLayer struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	URLTemplate string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom,omitempty"`
}

// DefaultBaseLayers returns the three mutually exclusive base maps.
func DefaultBaseLayers() []TileLayer {
	return []TileLayer{
		{
			Key:         "light",
			Name:        "Light",
			URLTemplate: "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
			MaxZoom:     20,
		},
		{
			Key:         "streets",
			Name:        "Streets",
			URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			MaxZoom:     19,
		},
		{
			Key:         "satellite",
			Name:        "Satellite",
			URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles &copy; Esri &mdash; Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community",
		},
	}
}

// GuideLine is a static polyline drawn on every view.
type GuideLine struct {
	From   [2]float64 `json:"from"`
	To     [2]float64 `json:"to"`
	Color  string     `json:"color"`
	Weight int        `json:"weight"`
}

// AntimeridianGuides marks the +-180 degree longitude seams pole to pole, a
// visual aid for the edge of valid map data.
func AntimeridianGuides() []GuideLine {
	return []GuideLine{
		{From: [2]float64{-90, 180}, To: [2]float64{90, 180}, Color: "firebrick", Weight: 5},
		{From: [2]float64{-90, -180}, To: [2]float64{90, -180}, Color: "firebrick", Weight: 5},
	}
}

// MapView is the fully assembled, widget-independent view for one render
// pass. Building it is pure: the same quakes always produce the same view.
type MapView struct {
	Center      [2]float64
	Zoom        int
	BaseLayers  []TileLayer
	OverlayName string
	Markers     []Marker
	Guides      []GuideLine
	Legend      Legend
}

// BuildMapView runs the full encoding pipeline for one snapshot: effective
// depths, quantile scale, markers, legend, then assembly with the fixed base
// layers and guides. An empty quake list yields an empty overlay and a
// zero-label legend, not an error.
func BuildMapView(quakes []Quake) MapView {
	depths := make([]float64, len(quakes))
	for i, q := range quakes {
		depths[i] = EffectiveDepth(q.Depth)
	}
	scale := BuildDepthScale(depths, DefaultPalette)

	return MapView{
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		BaseLayers:  DefaultBaseLayers(),
		OverlayName: OverlayName,
		Markers:     BuildMarkers(quakes, scale),
		Guides:      AntimeridianGuides(),
		Legend:      BuildLegend(scale),
	}
}
