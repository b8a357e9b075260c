package tiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-map/internal/observability"
)

// userAgent identifies this service to the tile providers.
const userAgent = "quake-map/1.0"

// ErrUnknownLayer marks a tile request for a layer key the proxy does not serve.
var ErrUnknownLayer = errors.New("unknown tile layer")

// Upstream is one proxied tile provider. The URL template uses {z}/{x}/{y}
// placeholders in whatever order the provider expects.
type Upstream struct {
	URLTemplate string
	Format      string // png or jpg, for the response content type
}

// DefaultUpstreams maps the base-layer keys to provider endpoints. Sharded
// subdomains are collapsed to one host since the proxy is a single client.
func DefaultUpstreams() map[string]Upstream {
	return map[string]Upstream{
		"light": {
			URLTemplate: "https://a.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
			Format:      "png",
		},
		"streets": {
			URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			Format:      "png",
		},
		"satellite": {
			URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Format:      "jpg",
		},
	}
}

// Proxy serves basemap raster tiles for the rendered page, fronting the
// upstream providers with an LRU+TTL cache so repeated pans and zooms stay
// off their infrastructure.
type Proxy struct {
	upstreams map[string]Upstream
	client    *http.Client
	cache     *Cache
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewProxy creates a tile proxy over the given upstreams.
func NewProxy(upstreams map[string]Upstream, cache *Cache, metrics *observability.Metrics, logger *slog.Logger) *Proxy {
	return &Proxy{
		upstreams: upstreams,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch retrieves one tile from cache or upstream.
func (p *Proxy) Fetch(ctx context.Context, layer string, z, x, y int) ([]byte, string, error) {
	up, ok := p.upstreams[layer]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}

	if cached := p.cache.Get(layer, z, x, y); cached != nil {
		p.metrics.TileRequests.WithLabelValues(layer, "hit").Inc()
		return cached, contentType(up.Format), nil
	}

	url := tileURL(up.URLTemplate, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.metrics.TileRequests.WithLabelValues(layer, "error").Inc()
		return nil, "", fmt.Errorf("create tile request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	p.metrics.TileUpstreamSeconds.WithLabelValues(layer).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.TileRequests.WithLabelValues(layer, "error").Inc()
		return nil, "", fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.metrics.TileRequests.WithLabelValues(layer, "error").Inc()
		return nil, "", fmt.Errorf("tile upstream returned %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.metrics.TileRequests.WithLabelValues(layer, "error").Inc()
		return nil, "", fmt.Errorf("read tile body: %w", err)
	}

	p.cache.Put(layer, z, x, y, data)
	p.metrics.TileRequests.WithLabelValues(layer, "miss").Inc()
	p.logger.Debug("fetched tile", "layer", layer, "z", z, "x", x, "y", y, "bytes", len(data))
	return data, contentType(up.Format), nil
}

// Handle serves one tile request routed as /tiles/{layer}/{z}/{x}/{y} with an
// optional extension on the final segment.
func (p *Proxy) Handle(w http.ResponseWriter, r *http.Request) {
	z, errZ := strconv.Atoi(r.PathValue("z"))
	x, errX := strconv.Atoi(r.PathValue("x"))
	yRaw := r.PathValue("y")
	y, errY := strconv.Atoi(strings.TrimSuffix(yRaw, path.Ext(yRaw)))
	if errZ != nil || errX != nil || errY != nil {
		http.Error(w, "invalid tile path", http.StatusBadRequest)
		return
	}

	data, ct, err := p.Fetch(r.Context(), r.PathValue("layer"), z, x, y)
	if errors.Is(err, ErrUnknownLayer) {
		http.Error(w, "unknown tile layer", http.StatusNotFound)
		return
	}
	if err != nil {
		p.logger.Error("tile fetch failed", "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Stats exposes the cache counters.
func (p *Proxy) Stats() CacheStats {
	return p.cache.Stats()
}

func tileURL(tmpl string, z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(tmpl)
}

func contentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
