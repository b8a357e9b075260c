package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/quake-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-map/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map/internal/adapter/leaflet"
	"github.com/couchcryptid/quake-map/internal/adapter/tiles"
	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Feed fetcher, optionally cached (feature-flagged via REDIS_ENABLED / REDIS_ADDR).
	var fetcher domain.FeedFetcher = usgs.NewClient(cfg.FeedURL, cfg.FetchTimeout, logger)
	var store *usgs.RedisStore
	if cfg.RedisEnabled {
		store = usgs.NewRedisStore(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, cache will fall through", "error", err)
		}
		cancel()
		fetcher = usgs.NewCachedFetcher(fetcher, store, cfg.FeedCacheTTL, metrics, logger)
		logger.Info("feed cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.FeedCacheTTL)
	} else {
		logger.Info("feed cache disabled")
	}

	// Event sink (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var publisher pipeline.EventPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.SinkEnabled.Set(1)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	// Tile proxy (feature-flagged via TILE_PROXY_ENABLED). When enabled the
	// rendered page requests tiles from this service instead of the providers.
	var tileProxy *tiles.Proxy
	tilePath := ""
	if cfg.TileProxyEnabled {
		cache := tiles.NewCache(cfg.TileCacheSize, cfg.TileCacheTTL)
		tileProxy = tiles.NewProxy(tiles.DefaultUpstreams(), cache, metrics, logger)
		tilePath = "/tiles"
		logger.Info("tile proxy enabled", "cache_size", cfg.TileCacheSize, "ttl", cfg.TileCacheTTL)
	}

	renderer := leaflet.NewRenderer(tilePath)
	p := pipeline.New(fetcher, renderer, publisher, logger, metrics, cfg.RefreshInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, tileProxy, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
