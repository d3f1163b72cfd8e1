package main

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/service-finder/internal/cache"
	"github.com/randalmurphal/service-finder/internal/metrics"
	"github.com/randalmurphal/service-finder/internal/search"
	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Purge cached query results",
	Long: `Delete cached query results from Redis. By default every engine
version is purged; --current limits the purge to the one built from the
current catalog and config.

Cache keys include a fingerprint of the catalog plus the intents, ranking,
suggest and quick_starts config, so editing any of them already stops old
entries from being served. This reclaims their memory early.`,
	RunE: runInvalidate,
}

var invalidateCurrent bool

func init() {
	invalidateCmd.Flags().BoolVar(&invalidateCurrent, "current", false, "Only purge results for the current catalog and config")
	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.RedisURL == "" {
		return fmt.Errorf("no Redis configured (set storage.redis_url or REDIS_URL)")
	}

	var fingerprint string
	if invalidateCurrent {
		engine, err := search.Open(cfg, newLogger(cmd.ErrOrStderr(), cfg.Logging.Level))
		if err != nil {
			return err
		}
		fingerprint = engine.Fingerprint()
	}

	redisCache, err := cache.NewRedisCache(cfg.Storage.RedisURL)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := redisCache.PurgeQueries(ctx, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	if ml, err := metrics.NewLogger(metrics.DefaultPath()); err == nil {
		ml.LogInvalidate(fingerprint, removed)
		ml.Close()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached results\n", removed)
	return nil
}
