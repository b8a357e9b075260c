// Command render performs a single fetch-build-render pass and writes the
// resulting page to a file, without serving HTTP. Pass -input to render from
// a local GeoJSON file instead of fetching the live feed.
//
// Usage:
//
//	go run ./cmd/render -out quakes.html
//	go run ./cmd/render -input data/mock/usgs_feed_260314.geojson -out quakes.html
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/quake-map/internal/adapter/leaflet"
	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feedURL := flag.String("feed-url", config.DefaultFeedURL, "USGS GeoJSON summary feed URL")
	input := flag.String("input", "", "render from a local GeoJSON file instead of fetching")
	out := flag.String("out", "quakes.html", "output path for the rendered page")
	timeout := flag.Duration("timeout", 30*time.Second, "feed fetch timeout")
	flag.Parse()

	logger := observability.NewLogger("info", "text")

	snap, err := loadSnapshot(*input, *feedURL, *timeout, logger)
	if err != nil {
		return fmt.Errorf("unable to load earthquake data: %w", err)
	}

	view := domain.BuildMapView(snap.Quakes)
	page, err := leaflet.NewRenderer("").Render(view)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if err := os.WriteFile(*out, page, 0o600); err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	logger.Info("page written", "path", *out, "quakes", len(snap.Quakes), "snapshot_id", snap.ID)
	return nil
}

func loadSnapshot(input, feedURL string, timeout time.Duration, logger *slog.Logger) (domain.FeedSnapshot, error) {
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return domain.FeedSnapshot{}, err
		}
		return usgs.DecodeSnapshot(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return usgs.NewClient(feedURL, timeout, logger).Fetch(ctx)
}
