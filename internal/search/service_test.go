package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/service-finder/internal/cache"
	"github.com/randalmurphal/service-finder/internal/config"
	"github.com/randalmurphal/service-finder/internal/index"
	"github.com/randalmurphal/service-finder/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	setKeys []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setKeys = append(c.setKeys, key)
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

type recorder struct {
	mu       sync.Mutex
	searches []metrics.SearchEvent
	errors   []string
}

func (r *recorder) LogSearch(ev metrics.SearchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, ev)
}

func (r *recorder) LogError(operation, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, operation)
}

func TestServiceFindWithoutCache(t *testing.T) {
	rec := &recorder{}
	svc := NewService(newTestEngine(t), ServiceOptions{Metrics: rec})

	res, err := svc.Find(context.Background(), "pay water bill")
	require.NoError(t, err)
	assert.Equal(t, "pay_bill", res.Intent)

	require.Len(t, rec.searches, 1)
	ev := rec.searches[0]
	assert.Equal(t, "pay water bill", ev.Query)
	assert.Equal(t, "pay_bill", ev.Intent)
	assert.Equal(t, len(res.Results), ev.Results)
	assert.Equal(t, len(res.Suggestions), ev.Suggestions)
	assert.False(t, ev.CacheHit)
}

func TestServiceFindUsesCache(t *testing.T) {
	engine := newTestEngine(t)
	mem := newMemoryCache()
	rec := &recorder{}
	svc := NewService(engine, ServiceOptions{Cache: mem, Metrics: rec, CacheTTL: 10 * time.Minute})
	ctx := context.Background()

	first, err := svc.Find(ctx, "report pothole")
	require.NoError(t, err)

	key := cache.QueryCacheKey(engine.Fingerprint(), "report pothole")
	assert.Contains(t, mem.data, key)
	assert.Equal(t, 10*time.Minute, mem.ttls[key])

	second, err := svc.Find(ctx, "  report pothole ")
	require.NoError(t, err)

	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.Meta, second.Meta)
	assert.Equal(t, ids(first.Results), ids(second.Results))
	assert.Equal(t, first.Results[0].MatchedOn, second.Results[0].MatchedOn)
	assert.InDelta(t, first.Results[0].ScoreValue(), second.Results[0].ScoreValue(), 1e-9)

	require.Len(t, rec.searches, 2)
	assert.False(t, rec.searches[0].CacheHit)
	assert.True(t, rec.searches[1].CacheHit)
	assert.Len(t, mem.setKeys, 1, "a hit must not rewrite the entry")
}

func TestServiceCacheHitMatchesRunForQueryCase(t *testing.T) {
	engine := newTestEngine(t)
	mem := newMemoryCache()
	svc := NewService(engine, ServiceOptions{Cache: mem})
	ctx := context.Background()

	_, err := svc.Find(ctx, "pay water bill")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := svc.Find(ctx, "PAY WATER BILL")
		require.NoError(t, err)

		want := engine.Run("PAY WATER BILL")
		assert.Equal(t, want.Query, got.Query)
		assert.Equal(t, want.Meta, got.Meta)
		assert.Equal(t, want.Intent, got.Intent)
		assert.Equal(t, ids(want.Results), ids(got.Results))
	}
	assert.Len(t, mem.setKeys, 2, "each spelling gets its own entry")
}

func TestServiceCacheSeparatesConfigs(t *testing.T) {
	mem := newMemoryCache()
	ctx := context.Background()

	first := NewService(newTestEngine(t), ServiceOptions{Cache: mem})
	res, err := first.Find(ctx, "pay water bill")
	require.NoError(t, err)
	require.Equal(t, "pay_bill", res.Intent)

	cfg := config.DefaultConfig()
	cfg.Intents = nil
	cat := fixtureCatalog()
	bare := NewEngine(cat, index.New(cat.Entries()), cfg)

	second := NewService(bare, ServiceOptions{Cache: mem})
	res, err = second.Find(ctx, "pay water bill")
	require.NoError(t, err)

	want := bare.Run("pay water bill")
	assert.Empty(t, res.Intent)
	assert.Equal(t, want.Message, res.Message)
	assert.Len(t, mem.setKeys, 2)
}

func TestServiceSkipsCacheForEmptyQuery(t *testing.T) {
	mem := newMemoryCache()
	svc := NewService(newTestEngine(t), ServiceOptions{Cache: mem})

	res, err := svc.Find(context.Background(), "  ")
	require.NoError(t, err)
	assert.Len(t, res.Results, 5)
	assert.Empty(t, mem.setKeys)
}

func TestServiceDegradesOnCacheErrors(t *testing.T) {
	mem := newMemoryCache()
	mem.getErr = errors.New("connection refused")
	mem.setErr = errors.New("connection refused")
	rec := &recorder{}
	svc := NewService(newTestEngine(t), ServiceOptions{Cache: mem, Metrics: rec})

	res, err := svc.Find(context.Background(), "trsh")
	require.NoError(t, err)
	assert.Equal(t, "trash", res.Results[0].Entry.ID)
	assert.Equal(t, []string{"cache_set"}, rec.errors)
}

func TestServiceIgnoresCorruptCacheEntry(t *testing.T) {
	engine := newTestEngine(t)
	mem := newMemoryCache()
	key := cache.QueryCacheKey(engine.Fingerprint(), "trsh")
	mem.data[key] = "{not json"

	svc := NewService(engine, ServiceOptions{Cache: mem})

	res, err := svc.Find(context.Background(), "trsh")
	require.NoError(t, err)
	assert.Equal(t, "trash", res.Results[0].Entry.ID)
	assert.NotEqual(t, "{not json", mem.data[key])
}

func TestServiceCancelledContext(t *testing.T) {
	svc := NewService(newTestEngine(t), ServiceOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Find(ctx, "trash")
	assert.ErrorIs(t, err, context.Canceled)
}
