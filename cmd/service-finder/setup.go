package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/randalmurphal/service-finder/internal/cache"
	"github.com/randalmurphal/service-finder/internal/config"
	"github.com/randalmurphal/service-finder/internal/metrics"
	"github.com/randalmurphal/service-finder/internal/search"
)

var (
	configPath   string
	logLevel     string
	catalogPaths []string
)

// loadConfig layers the config file, environment and flags.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.GlobalConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.LoadEnv(cfg)

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if len(catalogPaths) > 0 {
		cfg.Catalog.Paths = catalogPaths
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openService builds the engine plus whichever of the Redis cache and the
// metrics log are available. The returned cleanup releases both.
func openService(cfg *config.Config, logger *slog.Logger) (*search.Service, func(), error) {
	engine, err := search.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := search.ServiceOptions{
		CacheTTL: time.Duration(cfg.Cache.QueryTTLMinutes) * time.Minute,
		Logger:   logger,
	}
	var closers []func() error

	if cfg.Storage.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Storage.RedisURL)
		if err != nil {
			logger.Warn("Redis cache unavailable, continuing without cache", "error", err)
		} else {
			opts.Cache = redisCache
			closers = append(closers, redisCache.Close)
		}
	}

	metricsLogger, err := metrics.NewLogger(metrics.DefaultPath())
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
	} else {
		opts.Metrics = metricsLogger
		closers = append(closers, metricsLogger.Close)
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return search.NewService(engine, opts), cleanup, nil
}
