package search

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/randalmurphal/service-finder/internal/config"
	"github.com/randalmurphal/service-finder/internal/index"
)

const (
	noQueryMessage  = "Ask me something like **pay water bill**, **report pothole**, or **school phone**."
	fallbackMessage = "Okay, I'll try to find the best match."
)

// Result is everything a rendering surface needs for one query.
type Result struct {
	Query       string         `json:"query"`
	Intent      string         `json:"intent,omitempty"`
	Message     string         `json:"message"`
	Meta        string         `json:"meta"`
	Results     []RankedResult `json:"results"`
	Clarifier   *Clarifier     `json:"clarifier,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// Engine holds the immutable state built once at startup: catalog, index,
// vocabulary and intent rules. Run never mutates it, so one Engine can
// serve concurrent callers.
type Engine struct {
	catalog        *catalog.Catalog
	classifier     *Classifier
	ranker         *Ranker
	suggestions    *SuggestionGenerator
	ambiguityRatio float64
	quickStarts    []string
	fingerprint    string
}

// NewEngine wires the pipeline over cat using cfg's parameters.
func NewEngine(cat *catalog.Catalog, idx Index, cfg *config.Config) *Engine {
	return &Engine{
		catalog:    cat,
		classifier: NewClassifier(cfg.Intents),
		ranker: NewRanker(idx, cat, RankOptions{
			TopN:            cfg.Ranking.TopN,
			BrowseN:         cfg.Ranking.BrowseN,
			PriorityWeight:  cfg.Ranking.PriorityWeight,
			DefaultPriority: cfg.Ranking.DefaultPriority,
			Prefix:          cfg.Ranking.Prefix,
			Fuzzy:           cfg.Ranking.Fuzzy,
			DefaultBoost:    cfg.Ranking.DefaultBoost,
		}),
		suggestions: NewSuggestionGenerator(cat.Vocabulary(), cfg.QuickStarts, SuggestOptions{
			MaxResults:    cfg.Suggest.MaxResults,
			Limit:         cfg.Suggest.Limit,
			MaxLengthDiff: cfg.Suggest.MaxLengthDiff,
			MaxDistance:   cfg.Suggest.MaxDistance,
		}),
		ambiguityRatio: cfg.Ranking.AmbiguityRatio,
		quickStarts:    cfg.QuickStarts,
		fingerprint:    engineFingerprint(cat, cfg),
	}
}

// engineFingerprint hashes the catalog version together with every config
// section that shapes a Result. fmt prints maps in sorted key order.
func engineFingerprint(cat *catalog.Catalog, cfg *config.Config) string {
	h := blake3.New()
	fmt.Fprintf(h, "catalog=%s\n", cat.Fingerprint())
	fmt.Fprintf(h, "ranking=%+v\n", cfg.Ranking)
	fmt.Fprintf(h, "suggest=%+v\n", cfg.Suggest)
	fmt.Fprintf(h, "quick_starts=%q\n", cfg.QuickStarts)
	for _, in := range cfg.Intents {
		fmt.Fprintf(h, "intent=%q %q %q %q %v\n", in.ID, in.Triggers, in.Message, in.Expand, in.Boost)
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Open loads the catalog named by cfg, indexes it and builds an Engine.
func Open(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.Load(cfg.Catalog.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	idx := index.New(cat.Entries())
	logger.Info("catalog loaded",
		"entries", cat.Len(),
		"tags", len(cat.Vocabulary()),
		"fingerprint", cat.Fingerprint(),
	)

	return NewEngine(cat, idx, cfg), nil
}

// Fingerprint identifies the catalog and configuration this engine was
// built from. Two engines with equal fingerprints answer every query alike.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Intents returns the intents in precedence order.
func (e *Engine) Intents() []Intent {
	return e.classifier.Intents()
}

// QuickStarts returns the canned example queries.
func (e *Engine) QuickStarts() []string {
	return e.quickStarts
}

// Run executes the full pipeline for one raw query: classify, expand,
// rank, then clarify and suggest off the ranked output.
func (e *Engine) Run(raw string) *Result {
	q := strings.TrimSpace(raw)

	if q == "" {
		return &Result{
			Message: noQueryMessage,
			Meta:    fmt.Sprintf("Loaded %d entries. Try a quick start.", e.catalog.Len()),
			Results: e.ranker.Rank("", nil),
		}
	}

	intent := e.classifier.Classify(q)
	expanded := ExpandQuery(q, intent)
	ranked := e.ranker.Rank(expanded, e.ranker.BoostFor(intent))

	for i := range ranked {
		ranked[i].MatchedOn = matchedOn(ranked[i].Entry, q, matchedOnLimit)
	}

	res := &Result{
		Query:       q,
		Message:     fallbackMessage,
		Meta:        metaLine(q, len(ranked)),
		Results:     ranked,
		Clarifier:   Clarify(q, ranked, e.ambiguityRatio),
		Suggestions: e.suggestions.Generate(q, len(ranked)),
	}
	if intent != nil {
		res.Intent = intent.ID
		res.Message = intent.Message
	}
	return res
}

func metaLine(q string, n int) string {
	if n == 0 {
		return fmt.Sprintf("No results for “%s”. Try different words (e.g., \"trash\", \"permit\", \"pothole\").", q)
	}
	return fmt.Sprintf("Showing %d results for “%s”.", n, q)
}
