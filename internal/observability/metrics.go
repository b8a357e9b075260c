package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// refresh pipeline and its adapters.
type Metrics struct {
	RefreshesTotal  *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration prometheus.Histogram
	QuakesRendered  prometheus.Gauge
	PipelineState   prometheus.Gauge // 0 loading, 1 ready, 2 failed

	// Feed fetch metrics.
	FeedFetches      *prometheus.CounterVec // labels: outcome={success,error}
	FeedFetchSeconds prometheus.Histogram
	FeedCache        *prometheus.CounterVec // labels: result={hit,miss,error}

	// Kafka sink metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
	SinkEnabled     prometheus.Gauge

	// Tile proxy metrics.
	TileRequests        *prometheus.CounterVec   // labels: layer, result={hit,miss,error}
	TileUpstreamSeconds *prometheus.HistogramVec // labels: layer
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "refreshes_total",
			Help:      "Render passes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-build-render pass.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		QuakesRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "quakes_rendered",
			Help:      "Markers in the currently published view.",
		}),
		PipelineState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "pipeline_state",
			Help:      "Pipeline state: 0 loading, 1 ready, 2 failed.",
		}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "feed_fetches_total",
			Help:      "Feed acquisitions by outcome, cache-served included.",
		}, []string{"outcome"}),
		FeedFetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Feed acquisition duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "feed_cache_total",
			Help:      "Raw-feed cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "events_published_total",
			Help:      "Quake events written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "publish_errors_total",
			Help:      "Failed sink writes.",
		}),
		SinkEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "sink_enabled",
			Help:      "1 when the Kafka event sink is enabled, 0 otherwise.",
		}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "tile_requests_total",
			Help:      "Tile proxy requests by layer and result.",
		}, []string{"layer", "result"}),
		TileUpstreamSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "tile_upstream_duration_seconds",
			Help:      "Upstream tile fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"layer"}),
	}

	prometheus.MustRegister(
		m.RefreshesTotal,
		m.RefreshDuration,
		m.QuakesRendered,
		m.PipelineState,
		m.FeedFetches,
		m.FeedFetchSeconds,
		m.FeedCache,
		m.EventsPublished,
		m.PublishErrors,
		m.SinkEnabled,
		m.TileRequests,
		m.TileUpstreamSeconds,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RefreshesTotal:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "refreshes_total"}, []string{"outcome"}),
		RefreshDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_map", Name: "refresh_duration_seconds"}),
		QuakesRendered:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_map", Name: "quakes_rendered"}),
		PipelineState:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_map", Name: "pipeline_state"}),
		FeedFetches:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "feed_fetches_total"}, []string{"outcome"}),
		FeedFetchSeconds:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_map", Name: "feed_fetch_duration_seconds"}),
		FeedCache:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "feed_cache_total"}, []string{"result"}),
		EventsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_map", Name: "events_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_map", Name: "publish_errors_total"}),
		SinkEnabled:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_map", Name: "sink_enabled"}),
		TileRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_map", Name: "tile_requests_total"}, []string{"layer", "result"}),
		TileUpstreamSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "quake_map", Name: "tile_upstream_duration_seconds"}, []string{"layer"}),
	}
}
