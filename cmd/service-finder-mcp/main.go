// cmd/service-finder-mcp/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/randalmurphal/service-finder/internal/cache"
	"github.com/randalmurphal/service-finder/internal/config"
	"github.com/randalmurphal/service-finder/internal/mcp"
	"github.com/randalmurphal/service-finder/internal/metrics"
	"github.com/randalmurphal/service-finder/internal/search"
	"github.com/spf13/cobra"
)

const (
	serverName    = "service-finder-mcp"
	serverVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "service-finder-mcp",
	Short: "MCP server for the service finder",
	Long:  `An MCP (Model Context Protocol) server that lets agents look up local government services.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long:  `Start the MCP server listening on stdin/stdout for JSON-RPC messages.`,
	RunE:  runServe,
}

var (
	logFile    string
	configPath string
)

func init() {
	serveCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (defaults to ~/.cache/service-finder-mcp/server.log)")
	serveCmd.Flags().StringVar(&configPath, "config", "", "Config file (defaults to ~/.config/service-finder/config.yaml)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.GlobalConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.LoadEnv(cfg)

	// Logs go to a file: stdout is the protocol channel.
	logger, cleanup, err := setupLogging(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	logger.Info("starting MCP server", "name", serverName, "version", serverVersion)

	engine, err := search.Open(cfg, logger)
	if err != nil {
		return err
	}

	opts := search.ServiceOptions{
		CacheTTL: time.Duration(cfg.Cache.QueryTTLMinutes) * time.Minute,
		Logger:   logger,
	}
	if cfg.Storage.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Storage.RedisURL)
		if err != nil {
			logger.Warn("Redis cache unavailable, continuing without cache", "error", err)
		} else {
			defer redisCache.Close()
			opts.Cache = redisCache
		}
	}
	if metricsLogger, err := metrics.NewLogger(metrics.DefaultPath()); err == nil {
		defer metricsLogger.Close()
		opts.Metrics = metricsLogger
	}

	handler := search.NewHandler(search.NewService(engine, opts))
	server := mcp.NewServer(serverName, serverVersion, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("server stopped")
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func setupLogging(level string) (*slog.Logger, func(), error) {
	path := logFile
	if path == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		logDir := filepath.Join(cacheDir, "service-finder-mcp")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(logDir, "server.log")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl}))

	return logger, func() { file.Close() }, nil
}
