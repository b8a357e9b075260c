// Command validate performs end-to-end integrity checks on a USGS GeoJSON
// feed file: decode correctness, visual-encoding invariants, and render
// stability. It runs the file through the real decode, scale, marker, and
// page-render pipeline and verifies every derived value against the encoding
// rules, so a regenerated fixture or an edited palette gets caught before the
// test suites do.
//
// Usage:
//
//	go run ./cmd/validate -feed data/mock/usgs_feed_260314.geojson
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-map/internal/adapter/leaflet"
	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	feed := flag.String("feed", "data/mock/usgs_feed_260314.geojson", "path to a USGS GeoJSON feed file")
	flag.Parse()

	if *feed == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*feed); code != 0 {
		os.Exit(code)
	}
}

func run(feedPath string) int {
	// ── Load and decode the feed ──
	fmt.Println("=== Earthquake Feed Integrity Validation ===")
	fmt.Println()

	raw, err := os.ReadFile(feedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read feed: %v\n", err)
		return 1
	}

	snap, err := usgs.DecodeSnapshot(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode feed: %v\n", err)
		return 1
	}

	view := domain.BuildMapView(snap.Quakes)

	// ── Run validation phases ──
	phases := []*phase{
		validateFeedIntegrity(snap.Quakes),
		validateVisualEncoding(snap.Quakes, view),
		validateRenderStability(view),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Events: %d decoded, %d markers, %d legend labels\n",
		len(snap.Quakes), len(view.Markers), len(view.Legend.Labels))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Feed Integrity ──
// Validates the decoded events themselves: identity, coordinates, plausible
// physical values.

func validateFeedIntegrity(quakes []domain.Quake) *phase {
	p := &phase{name: "Phase 1: Feed Integrity (GeoJSON)"}

	if len(quakes) == 0 {
		p.errorf("feed contains no events")
		return p
	}

	seen := map[string]int{}
	for i, q := range quakes {
		if q.ID == "" {
			p.errorf("event %d: missing ID", i)
		} else if first, dup := seen[q.ID]; dup {
			p.errorf("event %d: duplicate ID %q (first seen at %d)", i, q.ID, first)
		} else {
			seen[q.ID] = i
		}

		if q.Lat < -90 || q.Lat > 90 {
			p.errorf("event %d (%s): latitude %g outside [-90, 90]", i, q.ID, q.Lat)
		}
		if q.Lon < -180 || q.Lon > 180 {
			p.errorf("event %d (%s): longitude %g outside [-180, 180]", i, q.ID, q.Lon)
		}
		if q.Depth < -10 || q.Depth > 800 {
			p.errorf("event %d (%s): depth %g km outside plausible range [-10, 800]", i, q.ID, q.Depth)
		}
		if q.Magnitude < -5 || q.Magnitude > 10 {
			p.errorf("event %d (%s): magnitude %g outside plausible range [-5, 10]", i, q.ID, q.Magnitude)
		}
		if q.Place == "" {
			p.errorf("event %d (%s): missing place description", i, q.ID)
		}
		if q.Time.IsZero() {
			p.errorf("event %d (%s): origin time is zero", i, q.ID)
		}
		if q.EventType == "" {
			p.errorf("event %d (%s): missing event type", i, q.ID)
		}
	}
	return p
}

// ── Phase 2: Visual Encoding ──
// Re-runs the depth scale over the events and verifies every marker and
// legend value against it.

func validateVisualEncoding(quakes []domain.Quake, view domain.MapView) *phase {
	p := &phase{name: "Phase 2: Visual Encoding (scale/markers)"}

	scale := rebuildScale(quakes)
	checkBoundaries(p, scale, quakes)
	checkMarkers(p, quakes, view.Markers, scale)
	checkLegend(p, view.Legend, scale)

	return p
}

// rebuildScale recomputes the quantile scale from the effective depths,
// independent of the scale baked into the view.
func rebuildScale(quakes []domain.Quake) domain.DepthScale {
	depths := make([]float64, len(quakes))
	for i, q := range quakes {
		depths[i] = domain.EffectiveDepth(q.Depth)
	}
	return domain.BuildDepthScale(depths, domain.DefaultPalette)
}

func checkBoundaries(p *phase, scale domain.DepthScale, quakes []domain.Quake) {
	if len(quakes) > 0 && len(scale.Boundaries) != len(scale.Palette)-1 {
		p.errorf("scale has %d boundaries, want %d", len(scale.Boundaries), len(scale.Palette)-1)
		return
	}

	for i := 1; i < len(scale.Boundaries); i++ {
		if scale.Boundaries[i] < scale.Boundaries[i-1] {
			p.errorf("boundary %d (%g) is below boundary %d (%g)",
				i, scale.Boundaries[i], i-1, scale.Boundaries[i-1])
		}
	}

	if len(scale.Boundaries) > 0 {
		minDepth := math.Inf(1)
		for _, q := range quakes {
			minDepth = math.Min(minDepth, domain.EffectiveDepth(q.Depth))
		}
		if !floatEq(scale.Boundaries[0], minDepth) {
			p.errorf("first boundary %g is not the minimum effective depth %g",
				scale.Boundaries[0], minDepth)
		}
	}
}

func checkMarkers(p *phase, quakes []domain.Quake, markers []domain.Marker, scale domain.DepthScale) {
	if len(markers) != len(quakes) {
		p.errorf("marker count: expected %d, got %d", len(quakes), len(markers))
		return
	}

	palette := map[string]bool{}
	for _, c := range domain.DefaultPalette {
		palette[c] = true
	}

	for i, m := range markers {
		q := quakes[i]
		id := q.ID

		if !floatEq(m.Lat, q.Lat) || !floatEq(m.Lon, q.Lon) {
			p.errorf("ID %s: marker at (%g, %g), event at (%g, %g)", id, m.Lat, m.Lon, q.Lat, q.Lon)
		}

		if !palette[m.Color] {
			p.errorf("ID %s: color %q not in palette", id, m.Color)
		}
		if want := scale.ColorFor(domain.EffectiveDepth(q.Depth)); m.Color != want {
			p.errorf("ID %s: color: expected %s for depth %g, got %s", id, want, q.Depth, m.Color)
		}

		if m.Radius < 2 {
			p.errorf("ID %s: radius %g below the visibility floor 2", id, m.Radius)
		}
		if want := domain.Radius(q.Magnitude); !floatEq(m.Radius, want) {
			p.errorf("ID %s: radius: expected %g for magnitude %g, got %g", id, want, q.Magnitude, m.Radius)
		}

		checkPopup(p, id, m.Popup)
	}
}

// checkPopup verifies the three-section popup layout without re-deriving the
// exact text: place, magnitude line, UTC timestamp.
func checkPopup(p *phase, id, popup string) {
	if n := strings.Count(popup, "<hr>"); n != 2 {
		p.errorf("ID %s: popup has %d <hr> separators, want 2", id, n)
		return
	}
	if !strings.Contains(popup, "<hr>Magnitude: ") {
		p.errorf("ID %s: popup missing magnitude section", id)
	}
	if !strings.HasSuffix(popup, " UTC") {
		p.errorf("ID %s: popup does not end with a UTC timestamp", id)
	}
}

func checkLegend(p *phase, legend domain.Legend, scale domain.DepthScale) {
	if legend.Title != domain.LegendTitle {
		p.errorf("legend title: expected %q, got %q", domain.LegendTitle, legend.Title)
	}

	if len(legend.Colors) != len(domain.DefaultPalette) {
		p.errorf("legend colors: expected %d, got %d", len(domain.DefaultPalette), len(legend.Colors))
	} else {
		for i, c := range legend.Colors {
			if c != domain.DefaultPalette[i] {
				p.errorf("legend color %d: expected %s, got %s", i, domain.DefaultPalette[i], c)
			}
		}
	}

	if len(legend.Labels) != len(scale.Boundaries) {
		p.errorf("legend labels: expected %d, got %d", len(scale.Boundaries), len(legend.Labels))
		return
	}
	if len(legend.Labels) == 0 {
		return
	}

	if legend.Labels[0] != domain.FloorLabel {
		p.errorf("first legend label: expected %q, got %q", domain.FloorLabel, legend.Labels[0])
	}
	for i := 1; i < len(legend.Labels); i++ {
		want := strconv.FormatFloat(scale.Boundaries[i], 'f', 2, 64)
		if legend.Labels[i] != want {
			p.errorf("legend label %d: expected %q, got %q", i, want, legend.Labels[i])
		}
	}
}

// ── Phase 3: Render Stability ──
// Renders the view to a page twice: the page must carry every encoded value
// and both passes must produce identical bytes.

func validateRenderStability(view domain.MapView) *phase {
	p := &phase{name: "Phase 3: Render Stability (page bytes)"}

	r := leaflet.NewRenderer("")
	first, err := r.Render(view)
	if err != nil {
		p.errorf("render: %v", err)
		return p
	}
	if len(first) == 0 {
		p.errorf("render produced an empty page")
		return p
	}

	page := string(first)
	if !strings.Contains(page, "unpkg.com/leaflet@") {
		p.errorf("page does not load the map widget assets")
	}
	if view.OverlayName != "" && !strings.Contains(page, view.OverlayName) {
		p.errorf("page missing overlay name %q", view.OverlayName)
	}
	for _, c := range markerColors(view.Markers) {
		if !strings.Contains(page, c) {
			p.errorf("page missing marker color %s", c)
		}
	}
	for _, label := range view.Legend.Labels {
		if !strings.Contains(page, label) {
			p.errorf("page missing legend label %q", label)
		}
	}

	second, err := r.Render(view)
	if err != nil {
		p.errorf("second render: %v", err)
		return p
	}
	if !bytes.Equal(first, second) {
		p.errorf("render is not deterministic: two passes over the same view differ")
	}
	return p
}

// markerColors returns the distinct marker colors in stable order.
func markerColors(markers []domain.Marker) []string {
	set := map[string]bool{}
	for _, m := range markers {
		set[m.Color] = true
	}
	colors := make([]string, 0, len(set))
	for c := range set {
		colors = append(colors, c)
	}
	sort.Strings(colors)
	return colors
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
