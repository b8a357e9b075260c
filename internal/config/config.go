package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFeedURL is the USGS all-earthquakes past-week summary feed.
const DefaultFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL         string
	FetchTimeout    time.Duration
	RefreshInterval time.Duration // 0 disables periodic refresh
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Redis raw-feed cache configuration.
	RedisAddr    string
	RedisEnabled bool
	FeedCacheTTL time.Duration

	// Kafka event sink configuration.
	KafkaBrokers []string
	KafkaEnabled bool
	KafkaTopic   string

	// Basemap tile proxy configuration.
	TileProxyEnabled bool
	TileCacheSize    int
	TileCacheTTL     time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := time.ParseDuration(envOrDefault("FETCH_TIMEOUT", "30s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	refreshInterval, err := time.ParseDuration(envOrDefault("REFRESH_INTERVAL", "15m"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	shutdownTimeout, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	feedCacheTTL, err := time.ParseDuration(envOrDefault("FEED_CACHE_TTL", "5m"))
	if err != nil || feedCacheTTL <= 0 {
		return nil, errors.New("invalid FEED_CACHE_TTL")
	}

	tileCacheTTL, err := time.ParseDuration(envOrDefault("TILE_CACHE_TTL", "1h"))
	if err != nil || tileCacheTTL <= 0 {
		return nil, errors.New("invalid TILE_CACHE_TTL")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	redisEnabled := redisAddr != ""
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		redisEnabled = v == "true"
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		FeedURL:         envOrDefault("FEED_URL", DefaultFeedURL),
		FetchTimeout:    fetchTimeout,
		RefreshInterval: refreshInterval,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RedisAddr:    redisAddr,
		RedisEnabled: redisEnabled,
		FeedCacheTTL: feedCacheTTL,

		KafkaBrokers: kafkaBrokers,
		KafkaEnabled: kafkaEnabled,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "quake-events"),

		TileProxyEnabled: os.Getenv("TILE_PROXY_ENABLED") == "true",
		TileCacheSize:    parseTileCacheSize(),
		TileCacheTTL:     tileCacheTTL,
	}

	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ENABLED is true but REDIS_ADDR is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// envOrDefault returns the value of key, or def when unset or empty.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseTileCacheSize() int {
	if s := os.Getenv("TILE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 2048
}
