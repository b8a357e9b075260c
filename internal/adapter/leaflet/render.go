package leaflet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// Renderer turns an assembled MapView into a standalone Leaflet page. The
// markers stay plain descriptors until the page script binds them to the
// widget, so rendering is a pure data-to-bytes step.
type Renderer struct {
	tmpl          *template.Template
	tileProxyPath string
}

// NewRenderer builds a page renderer. A non-empty tileProxyPath rewrites the
// base-layer URL templates onto the local tile proxy under that path prefix.
func NewRenderer(tileProxyPath string) *Renderer {
	return &Renderer{
		tmpl:          template.Must(template.New("page").Parse(tmplPage)),
		tileProxyPath: strings.TrimSuffix(tileProxyPath, "/"),
	}
}

// pageData is the single JSON blob handed to the page script.
type pageData struct {
	Center      [2]float64         `json:"center"`
	Zoom        int                `json:"zoom"`
	BaseLayers  []domain.TileLayer `json:"baseLayers"`
	OverlayName string             `json:"overlayName"`
	Markers     []domain.Marker    `json:"markers"`
	Guides      []domain.GuideLine `json:"guides"`
	FillOpacity float64            `json:"fillOpacity"`
	LegendHTML  string             `json:"legendHTML"`
}

// Render produces the complete page for one view. The same view always
// renders to identical bytes.
func (r *Renderer) Render(view domain.MapView) ([]byte, error) {
	data := pageData{
		Center:      view.Center,
		Zoom:        view.Zoom,
		BaseLayers:  r.baseLayers(view.BaseLayers),
		OverlayName: view.OverlayName,
		Markers:     view.Markers,
		Guides:      view.Guides,
		FillOpacity: domain.MarkerFillOpacity,
		LegendHTML:  legendHTML(view.Legend),
	}
	// The page script iterates these; null would break it.
	if data.Markers == nil {
		data.Markers = []domain.Marker{}
	}
	if data.Guides == nil {
		data.Guides = []domain.GuideLine{}
	}

	blob, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal page data: %w", err)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, struct{ PageJSON template.JS }{template.JS(blob)}); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

// baseLayers returns the view's layers, routed through the tile proxy when
// one is configured.
func (r *Renderer) baseLayers(layers []domain.TileLayer) []domain.TileLayer {
	if r.tileProxyPath == "" {
		return layers
	}
	proxied := make([]domain.TileLayer, len(layers))
	for i, layer := range layers {
		layer.URLTemplate = fmt.Sprintf("%s/%s/{z}/{x}/{y}.png", r.tileProxyPath, layer.Key)
		proxied[i] = layer
	}
	return proxied
}

// legendHTML renders the static legend control content: title, gradient bar
// across the palette, and the boundary labels. Zero labels still show the
// title and bar.
func legendHTML(legend domain.Legend) string {
	var b strings.Builder
	b.WriteString("<h4>")
	b.WriteString(html.EscapeString(legend.Title))
	b.WriteString("</h4>")
	fmt.Fprintf(&b, `<div class="legend-bar" style="background:linear-gradient(to right, %s)"></div>`,
		strings.Join(legend.Colors, ", "))
	if len(legend.Labels) > 0 {
		b.WriteString(`<div class="legend-labels">`)
		for _, label := range legend.Labels {
			b.WriteString("<span>")
			b.WriteString(html.EscapeString(label))
			b.WriteString("</span>")
		}
		b.WriteString("</div>")
	}
	return b.String()
}

// LoadingPage is the self-refreshing placeholder served before the first
// successful render pass.
func LoadingPage() []byte {
	return []byte(loadingHTML)
}

// FailedPage is the fixed failure state served when no map can be shown.
func FailedPage() []byte {
	return []byte(failedHTML)
}
