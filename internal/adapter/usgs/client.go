package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// userAgent identifies this service to the feed provider.
const userAgent = "quake-map/1.0"

// Client fetches and decodes a USGS GeoJSON summary feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client for one configured feed URL.
func NewClient(feedURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the current feed snapshot. Transport, status, and decode
// failures all fail the whole render pass; there is no partial result.
func (c *Client) Fetch(ctx context.Context) (domain.FeedSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return domain.FeedSnapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FeedSnapshot{}, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.FeedSnapshot{}, fmt.Errorf("feed error: status %d: %s", resp.StatusCode, body)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FeedSnapshot{}, fmt.Errorf("read feed: %w", err)
	}

	snap, err := DecodeSnapshot(raw)
	if err != nil {
		return domain.FeedSnapshot{}, err
	}

	c.logger.Debug("fetched feed",
		"url", c.feedURL,
		"quakes", len(snap.Quakes),
		"bytes", len(raw))
	return snap, nil
}

// DecodeSnapshot parses raw feed bytes into a stamped snapshot. It is split
// from Fetch so cached bytes and local fixture files decode the same way.
func DecodeSnapshot(raw []byte) (domain.FeedSnapshot, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return domain.FeedSnapshot{}, fmt.Errorf("decode feed: %w", err)
	}

	quakes := make([]domain.Quake, 0, len(fc.Features))
	for _, f := range fc.Features {
		q, err := quakeFromFeature(f)
		if err != nil {
			return domain.FeedSnapshot{}, fmt.Errorf("decode feed: %w", err)
		}
		quakes = append(quakes, q)
	}
	return domain.NewFeedSnapshot(quakes, raw), nil
}

// quakeFromFeature converts one GeoJSON feature. Geometry problems are fatal;
// attribute gaps (null mag, missing place) degrade to zero values, which the
// encoding keeps visible via the radius floor.
func quakeFromFeature(f *geojson.Feature) (domain.Quake, error) {
	pt, ok := f.Geometry.(*geom.Point)
	if !ok {
		return domain.Quake{}, fmt.Errorf("feature %q: missing point geometry", f.ID)
	}
	coords := pt.Coords()
	if len(coords) < 2 {
		return domain.Quake{}, fmt.Errorf("feature %q: incomplete coordinates", f.ID)
	}

	q := domain.Quake{
		ID:        f.ID,
		EventType: stringProp(f.Properties, "type"),
		Lon:       coords[0],
		Lat:       coords[1],
		Magnitude: floatProp(f.Properties, "mag"),
		Place:     stringProp(f.Properties, "place"),
		Time:      time.UnixMilli(int64(floatProp(f.Properties, "time"))).UTC(),
	}
	if len(coords) > 2 {
		q.Depth = coords[2]
	}
	if q.EventType == "" {
		q.EventType = "earthquake"
	}
	return q, nil
}

func floatProp(props map[string]interface{}, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
