package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 12, cfg.Ranking.TopN)
	assert.Equal(t, 8, cfg.Ranking.BrowseN)
	assert.InDelta(t, 0.88, cfg.Ranking.AmbiguityRatio, 1e-9)
	assert.InDelta(t, 0.2, cfg.Ranking.Fuzzy, 1e-9)
	assert.True(t, cfg.Ranking.Prefix)
	assert.Equal(t, map[string]float64{"name": 2.0, "tags": 2.0, "summary": 1.2, "org": 1.1}, cfg.Ranking.DefaultBoost)
	assert.Len(t, cfg.QuickStarts, 8)
	require.Len(t, cfg.Intents, 6)
	assert.Equal(t, "pay_bill", cfg.Intents[0].ID)
	assert.Equal(t, "school", cfg.Intents[5].ID)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
catalog:
  paths: ["catalog/**/*.json"]
ranking:
  top_n: 5
  ambiguity_ratio: 0.9
  default_boost:
    name: 3.0
intents:
  - id: trash
    triggers: ["trash", "garbage"]
    message: "Trash?"
    expand: ["pickup"]
    boost: {tags: 2.0}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"catalog/**/*.json"}, cfg.Catalog.Paths)
	assert.Equal(t, 5, cfg.Ranking.TopN)
	assert.Equal(t, 8, cfg.Ranking.BrowseN, "unset values keep defaults")
	assert.InDelta(t, 0.9, cfg.Ranking.AmbiguityRatio, 1e-9)
	assert.Equal(t, map[string]float64{"name": 3.0}, cfg.Ranking.DefaultBoost)
	require.Len(t, cfg.Intents, 1)
	assert.Equal(t, "trash", cfg.Intents[0].ID)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty triggers",
			yaml: "intents:\n  - id: a\n    triggers: []\n",
			want: "no triggers",
		},
		{
			name: "non-positive boost",
			yaml: "intents:\n  - id: a\n    triggers: [x]\n    boost: {name: 0}\n",
			want: "must be positive",
		},
		{
			name: "duplicate id",
			yaml: "intents:\n  - id: a\n    triggers: [x]\n  - id: a\n    triggers: [y]\n",
			want: "duplicate intent id",
		},
		{
			name: "negative suggest limit",
			yaml: "suggest:\n  limit: -1\n",
			want: "suggest values must not be negative",
		},
		{
			name: "negative suggest distance",
			yaml: "suggest:\n  max_distance: -2\n",
			want: "suggest values must not be negative",
		},
		{
			name: "ambiguity ratio above one",
			yaml: "ranking:\n  ambiguity_ratio: 1.5\n",
			want: "ambiguity_ratio",
		},
		{
			name: "zero ambiguity ratio",
			yaml: "ranking:\n  ambiguity_ratio: 0\n",
			want: "ambiguity_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	// keep a stray .env out of the way
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("SERVICE_FINDER_CATALOG", "a.json"+string(os.PathListSeparator)+"b/*.json")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("SERVICE_FINDER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	LoadEnv(cfg)

	assert.Equal(t, []string{"a.json", "b/*.json"}, cfg.Catalog.Paths)
	assert.Equal(t, "redis://cache:6379", cfg.Storage.RedisURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
