package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/service-finder/internal/cache"
	"github.com/randalmurphal/service-finder/internal/metrics"
)

// ResultCache stores serialized results between calls.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// EventRecorder receives one event per completed query.
type EventRecorder interface {
	LogSearch(ev metrics.SearchEvent)
	LogError(operation, message string)
}

// ServiceOptions configures the optional collaborators of a Service.
// Nil fields disable the corresponding feature.
type ServiceOptions struct {
	Cache    ResultCache
	Metrics  EventRecorder
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Service runs queries through an Engine with caching and metrics.
type Service struct {
	engine   *Engine
	cache    ResultCache
	metrics  EventRecorder
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewService creates a service around engine.
func NewService(engine *Engine, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:   engine,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		cacheTTL: opts.CacheTTL,
		logger:   logger,
	}
}

// Engine returns the underlying engine.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Find answers one query. Cache failures are logged and the query is
// answered uncached; only a cancelled context fails the call.
func (s *Service) Find(ctx context.Context, raw string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	q := strings.TrimSpace(raw)

	var key string
	if s.cache != nil && q != "" {
		key = cache.QueryCacheKey(s.engine.Fingerprint(), q)
		if res, ok := s.cached(ctx, key); ok {
			s.logger.Debug("cache hit", "query", q)
			s.record(res, time.Since(start), true)
			return res, nil
		}
	}

	res := s.engine.Run(q)

	if key != "" {
		s.store(ctx, key, res)
	}

	s.logger.Info("query answered",
		"query", q,
		"intent", res.Intent,
		"results", len(res.Results),
		"clarified", res.Clarifier != nil,
		"suggestions", len(res.Suggestions),
	)
	s.record(res, time.Since(start), false)

	return res, nil
}

func (s *Service) cached(ctx context.Context, key string) (*Result, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if data == "" {
		return nil, false
	}

	var res Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		s.logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}
	return &res, true
}

func (s *Service) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		s.logger.Warn("failed to encode result for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache result", "error", err)
		if s.metrics != nil {
			s.metrics.LogError("cache_set", err.Error())
		}
	}
}

func (s *Service) record(res *Result, latency time.Duration, cacheHit bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.LogSearch(metrics.SearchEvent{
		Query:       res.Query,
		Intent:      res.Intent,
		Results:     len(res.Results),
		Suggestions: len(res.Suggestions),
		Clarified:   res.Clarifier != nil,
		LatencyMs:   latency.Milliseconds(),
		CacheHit:    cacheHit,
	})
}
