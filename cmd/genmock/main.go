// Command genmock writes the mock USGS feed fixture used by the test suites.
// It runs the written bytes back through the actual feed decoder and view
// builder, then prints the derived visual encoding so test assertions can be
// updated alongside the fixture.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/usgs_feed_260314.geojson
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
)

// mockEvent is one canonical earthquake in the fixture. Depths are chosen so
// the quantile scale spreads the set across every color class, including a
// negative depth that exercises the clamp.
type mockEvent struct {
	net     string
	code    string
	mag     float64
	magType string
	place   string
	timeMS  int64
	updated int64
	lon     float64
	lat     float64
	depth   float64
	sig     int
}

var mockEvents = []mockEvent{
	{net: "us", code: "7000m9xa", mag: 4.6, magType: "mb", place: "83 km SSE of Sand Point, Alaska", timeMS: 1773446401000, updated: 1773448230000, lon: -160.23, lat: 54.57, depth: 32.1, sig: 326},
	{net: "nc", code: "75091286", mag: 1.2, magType: "md", place: "8km NW of The Geysers, CA", timeMS: 1773448823000, updated: 1773449400000, lon: -122.789, lat: 38.825, depth: 2.3, sig: 22},
	{net: "ak", code: "0267mkzvtq", mag: 2.1, magType: "ml", place: "43 km E of Nanwalek, Alaska", timeMS: 1773451247000, updated: 1773452100000, lon: -151.41, lat: 59.22, depth: 59.7, sig: 68},
	{net: "us", code: "7000m9yb", mag: 5.8, magType: "mww", place: "South Sandwich Islands region", timeMS: 1773453901000, updated: 1773455800000, lon: -26.33, lat: -57.09, depth: 98.4, sig: 518},
	{net: "hv", code: "74613057", mag: 1.9, magType: "md", place: "6 km SSW of Pāhala, Hawaii", timeMS: 1773456322000, updated: 1773457000000, lon: -155.48, lat: 19.2, depth: 31.5, sig: 56},
	{net: "pr", code: "71459118", mag: 3.1, magType: "md", place: "56 km N of Isabela, Puerto Rico", timeMS: 1773458762000, updated: 1773459600000, lon: -67.05, lat: 18.99, depth: 19, sig: 148},
	{net: "nn", code: "00912447", mag: 0.4, magType: "ml", place: "23 km SE of Mina, Nevada", timeMS: 1773460489000, updated: 1773461100000, lon: -117.93, lat: 38.24, depth: 7.7, sig: 2},
	{net: "ci", code: "41130243", mag: 2.7, magType: "ml", place: "10km NW of Ridgecrest, CA", timeMS: 1773462217000, updated: 1773463000000, lon: -117.73, lat: 35.69, depth: 1.9, sig: 112},
	{net: "us", code: "7000m9zc", mag: 6.3, magType: "mww", place: "Kermadec Islands, New Zealand", timeMS: 1773464836000, updated: 1773466700000, lon: -177.91, lat: -29.72, depth: 167.2, sig: 611},
	{net: "uw", code: "62091773", mag: 1.5, magType: "ml", place: "7 km ENE of Orting, Washington", timeMS: 1773467204000, updated: 1773467900000, lon: -122.12, lat: 47.12, depth: -0.6, sig: 35},
}

// Field order in these structs mirrors the USGS summary feed key order.
type feedMetadata struct {
	Generated int64  `json:"generated"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	API       string `json:"api"`
	Count     int    `json:"count"`
}

type feedProperties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"`
	Updated int64   `json:"updated"`
	URL     string  `json:"url"`
	Tsunami int     `json:"tsunami"`
	Sig     int     `json:"sig"`
	Net     string  `json:"net"`
	Code    string  `json:"code"`
	MagType string  `json:"magType"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
}

type feedGeometry struct {
	Type        string     `json:"type"`
	Coordinates [3]float64 `json:"coordinates"`
}

type feedFeature struct {
	Type       string         `json:"type"`
	Properties feedProperties `json:"properties"`
	Geometry   feedGeometry   `json:"geometry"`
	ID         string         `json:"id"`
}

type feedFile struct {
	Type     string        `json:"type"`
	Metadata feedMetadata  `json:"metadata"`
	Features []feedFeature `json:"features"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/usgs_feed_260314.geojson", "output path for the mock feed fixture")
	flag.Parse()

	feed := buildFeed()

	data, err := writeJSON(*out, feed)
	if err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d events)", *out, len(feed.Features))

	// Run the bytes back through the real decoder so the printed stats match
	// exactly what the pipeline derives from this file.
	snap, err := usgs.DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("decoding written fixture: %w", err)
	}

	printStats(snap)
	return nil
}

func buildFeed() feedFile {
	features := make([]feedFeature, 0, len(mockEvents))
	for _, e := range mockEvents {
		id := e.net + e.code
		mag := strconv.FormatFloat(e.mag, 'f', -1, 64)
		features = append(features, feedFeature{
			Type: "Feature",
			Properties: feedProperties{
				Mag:     e.mag,
				Place:   e.place,
				Time:    e.timeMS,
				Updated: e.updated,
				URL:     "https://earthquake.usgs.gov/earthquakes/eventpage/" + id,
				Tsunami: 0,
				Sig:     e.sig,
				Net:     e.net,
				Code:    e.code,
				MagType: e.magType,
				Type:    "earthquake",
				Title:   fmt.Sprintf("M %s - %s", mag, e.place),
			},
			Geometry: feedGeometry{
				Type:        "Point",
				Coordinates: [3]float64{e.lon, e.lat, e.depth},
			},
			ID: id,
		})
	}

	return feedFile{
		Type: "FeatureCollection",
		Metadata: feedMetadata{
			Generated: 1773468900000,
			URL:       config.DefaultFeedURL,
			Title:     "USGS All Earthquakes, Mock Feed",
			Status:    200,
			API:       "1.14.1",
			Count:     len(features),
		},
		Features: features,
	}
}

func writeJSON(path string, v any) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')
	return data, os.WriteFile(path, data, 0o600)
}

func printStats(snap domain.FeedSnapshot) {
	view := domain.BuildMapView(snap.Quakes)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Events: %d\n", len(snap.Quakes))
	fmt.Printf("Legend labels: %q\n", view.Legend.Labels)

	colorCounts := map[string]int{}
	for _, m := range view.Markers {
		colorCounts[m.Color]++
	}
	fmt.Print("Colors:")
	for _, c := range view.Legend.Colors {
		fmt.Printf(" %s=%d", c, colorCounts[c])
	}
	fmt.Println()

	if len(view.Markers) == 0 {
		return
	}

	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, m := range view.Markers {
		minR = math.Min(minR, m.Radius)
		maxR = math.Max(maxR, m.Radius)
	}
	fmt.Printf("Radius range: %g to %g\n", minR, maxR)
	fmt.Printf("First popup: %s\n", view.Markers[0].Popup)
}
