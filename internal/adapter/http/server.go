package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-map/internal/adapter/leaflet"
	"github.com/couchcryptid/quake-map/internal/adapter/tiles"
	"github.com/couchcryptid/quake-map/internal/pipeline"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ViewSource provides the pipeline state and the latest rendered output.
type ViewSource interface {
	ReadinessChecker
	State() pipeline.State
	Current() *pipeline.RenderedView
}

// Server exposes the map page, the raw feed passthrough, and the health,
// readiness, and metrics endpoints. Tile proxy routes are registered only
// when a proxy is supplied.
type Server struct {
	httpServer *http.Server
	views      ViewSource
	tiles      *tiles.Proxy
	logger     *slog.Logger
}

// NewServer creates an HTTP server serving the rendered map. Pass a nil tile
// proxy to disable the /tiles routes.
func NewServer(addr string, views ViewSource, tileProxy *tiles.Proxy, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		views:  views,
		tiles:  tileProxy,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/feed.geojson", s.handleFeed)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(views))
	mux.Handle("GET /metrics", promhttp.Handler())

	if tileProxy != nil {
		mux.HandleFunc("GET /tiles/{layer}/{z}/{x}/{y}", tileProxy.Handle)
		mux.HandleFunc("GET /tiles/stats", s.handleTileStats)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleIndex serves the current map page. Before the first refresh completes
// it serves a self-reloading placeholder; once the pipeline has failed without
// ever producing a view it serves the failure page.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	cur := s.views.Current()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case cur != nil:
		_, _ = w.Write(cur.HTML)
	case s.views.State() == pipeline.StateFailed:
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write(leaflet.FailedPage())
	default:
		_, _ = w.Write(leaflet.LoadingPage())
	}
}

// handleFeed serves the raw upstream GeoJSON of the current snapshot
// byte-for-byte.
func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	cur := s.views.Current()
	if cur == nil {
		msg := "earthquake data not loaded yet"
		if s.views.State() == pipeline.StateFailed {
			msg = "unable to load earthquake data"
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msg})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(cur.Raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleTileStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tiles.Stats())
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort status response
}
