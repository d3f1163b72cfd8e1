// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds global configuration
type Config struct {
	Catalog     CatalogConfig  `yaml:"catalog"`
	Ranking     RankingConfig  `yaml:"ranking"`
	Suggest     SuggestConfig  `yaml:"suggest"`
	QuickStarts []string       `yaml:"quick_starts"`
	Intents     []IntentConfig `yaml:"intents"`
	Storage     StorageConfig  `yaml:"storage"`
	Cache       CacheConfig    `yaml:"cache"`
	Logging     LoggingConfig  `yaml:"logging"`
	HTTP        HTTPConfig     `yaml:"http"`
}

type CatalogConfig struct {
	Paths []string `yaml:"paths"` // doublestar globs, e.g. "data/**/*.json"
}

// RankingConfig tunes the ranker and the ambiguity resolver.
type RankingConfig struct {
	TopN            int                `yaml:"top_n"`
	BrowseN         int                `yaml:"browse_n"`
	PriorityWeight  float64            `yaml:"priority_weight"`
	DefaultPriority float64            `yaml:"default_priority"`
	Fuzzy           float64            `yaml:"fuzzy"`
	Prefix          bool               `yaml:"prefix"`
	AmbiguityRatio  float64            `yaml:"ambiguity_ratio"`
	DefaultBoost    map[string]float64 `yaml:"default_boost"`
}

// SuggestConfig tunes "did you mean" generation.
type SuggestConfig struct {
	MaxResults    int `yaml:"max_results"` // only suggest at or below this many results
	Limit         int `yaml:"limit"`
	MaxLengthDiff int `yaml:"max_length_diff"`
	MaxDistance   int `yaml:"max_distance"`
}

// IntentConfig is one rule-based intent. Declaration order is significant:
// it breaks ties between intents with equal trigger hits.
type IntentConfig struct {
	ID       string             `yaml:"id"`
	Triggers []string           `yaml:"triggers"`
	Message  string             `yaml:"message"`
	Expand   []string           `yaml:"expand"`
	Boost    map[string]float64 `yaml:"boost"`
}

type StorageConfig struct {
	RedisURL string `yaml:"redis_url"`
}

type CacheConfig struct {
	QueryTTLMinutes int `yaml:"query_ttl_minutes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // error|warn|info|debug
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Paths: []string{"data/*.json"},
		},
		Ranking: RankingConfig{
			TopN:            12,
			BrowseN:         8,
			PriorityWeight:  0.01,
			DefaultPriority: 50,
			Fuzzy:           0.2,
			Prefix:          true,
			AmbiguityRatio:  0.88,
			DefaultBoost: map[string]float64{
				"name":    2.0,
				"tags":    2.0,
				"summary": 1.2,
				"org":     1.1,
			},
		},
		Suggest: SuggestConfig{
			MaxResults:    2,
			Limit:         5,
			MaxLengthDiff: 3,
			MaxDistance:   2,
		},
		QuickStarts: DefaultQuickStarts(),
		Intents:     DefaultIntents(),
		Storage: StorageConfig{
			RedisURL: "",
		},
		Cache: CacheConfig{
			QueryTTLMinutes: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// DefaultQuickStarts returns the canned example queries.
func DefaultQuickStarts() []string {
	return []string{
		"pay water bill",
		"report pothole",
		"trash pickup",
		"police non emergency",
		"school phone",
		"hours",
		"directions",
		"animal control",
	}
}

// DefaultIntents returns the built-in intent rules in precedence order.
func DefaultIntents() []IntentConfig {
	return []IntentConfig{
		{
			ID:       "pay_bill",
			Triggers: []string{"pay", "payment", "bill", "billing", "invoice", "late fee"},
			Message:  "Sounds like you're trying to **pay a bill / handle billing**.",
			Expand:   []string{"pay bill", "billing", "payment"},
			Boost:    map[string]float64{"tags": 2.5, "name": 2.0, "summary": 1.2, "org": 1.1},
		},
		{
			ID:       "report_issue",
			Triggers: []string{"report", "complaint", "problem", "pothole", "broken", "noise", "leak", "outage"},
			Message:  "Sounds like you want to **report an issue**.",
			Expand:   []string{"report", "complaint", "service request"},
			Boost:    map[string]float64{"tags": 2.6, "name": 1.8, "summary": 1.3, "org": 1.1},
		},
		{
			ID:       "hours",
			Triggers: []string{"hours", "open", "close", "closing", "time", "when"},
			Message:  "Sounds like you're looking for **hours / when something is open**.",
			Expand:   []string{"hours", "open", "close"},
			Boost:    map[string]float64{"summary": 1.5, "tags": 2.0, "name": 1.8, "org": 1.1},
		},
		{
			ID:       "phone",
			Triggers: []string{"phone", "call", "number", "contact"},
			Message:  "Sounds like you need a **phone number / contact**.",
			Expand:   []string{"phone", "call", "contact"},
			Boost:    map[string]float64{"name": 2.2, "tags": 2.0, "summary": 1.2, "org": 1.1},
		},
		{
			ID:       "directions",
			Triggers: []string{"address", "directions", "where", "location", "map"},
			Message:  "Sounds like you're looking for an **address / directions**.",
			Expand:   []string{"address", "directions", "map"},
			Boost:    map[string]float64{"tags": 2.0, "summary": 1.3, "name": 1.7, "org": 1.1},
		},
		{
			ID:       "school",
			Triggers: []string{"school", "elementary", "middle", "high", "bus", "enroll", "registration"},
			Message:  "Sounds like you're looking for **school info**.",
			Expand:   []string{"school", "enroll", "registration"},
			Boost:    map[string]float64{"tags": 2.5, "name": 2.2, "summary": 1.2, "org": 1.2},
		},
	}
}

// LoadConfig loads config from file or returns defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	// yaml.v3 merges maps into the existing default maps, so a config that
	// sets only some boosts would inherit the rest. Replace them instead.
	cfg.Ranking.DefaultBoost = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if len(cfg.Ranking.DefaultBoost) == 0 {
		cfg.Ranking.DefaultBoost = DefaultConfig().Ranking.DefaultBoost
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks invariants the pipeline relies on.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, in := range c.Intents {
		if in.ID == "" {
			return fmt.Errorf("intent %d has no id", i)
		}
		if seen[in.ID] {
			return fmt.Errorf("duplicate intent id %q", in.ID)
		}
		seen[in.ID] = true
		if len(in.Triggers) == 0 {
			return fmt.Errorf("intent %q has no triggers", in.ID)
		}
		for field, w := range in.Boost {
			if w <= 0 {
				return fmt.Errorf("intent %q: boost for %q must be positive", in.ID, field)
			}
		}
	}
	for field, w := range c.Ranking.DefaultBoost {
		if w <= 0 {
			return fmt.Errorf("default boost for %q must be positive", field)
		}
	}
	if c.Ranking.TopN <= 0 || c.Ranking.BrowseN < 0 {
		return fmt.Errorf("ranking.top_n must be positive and ranking.browse_n non-negative")
	}
	if c.Ranking.Fuzzy < 0 {
		return fmt.Errorf("ranking.fuzzy must not be negative")
	}
	if !(c.Ranking.AmbiguityRatio > 0 && c.Ranking.AmbiguityRatio <= 1) {
		return fmt.Errorf("ranking.ambiguity_ratio must be in (0, 1], got %v", c.Ranking.AmbiguityRatio)
	}
	if c.Suggest.MaxResults < 0 || c.Suggest.Limit < 0 || c.Suggest.MaxLengthDiff < 0 || c.Suggest.MaxDistance < 0 {
		return fmt.Errorf("suggest values must not be negative")
	}
	return nil
}

// LoadEnv applies .env and environment overrides on top of cfg.
// Variables already set in the environment win over .env values.
func LoadEnv(cfg *Config) {
	_ = godotenv.Load() // .env is optional

	if v := os.Getenv("SERVICE_FINDER_CATALOG"); v != "" {
		cfg.Catalog.Paths = filepath.SplitList(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("SERVICE_FINDER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// GlobalConfigPath returns the default location of the config file.
func GlobalConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory config
		return ".service-finder.yaml"
	}
	return filepath.Join(homeDir, ".config", "service-finder", "config.yaml")
}
