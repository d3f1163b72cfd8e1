package search

import (
	"sort"

	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/randalmurphal/service-finder/internal/index"
)

// Index is the full-text search capability the ranker delegates to.
type Index interface {
	Search(query string, opts index.Options) []index.Hit
}

// RankedResult pairs an entry with its adjusted score. Score is nil for
// unscored browsing results.
type RankedResult struct {
	Entry     *catalog.Entry `json:"entry"`
	Score     *float64       `json:"score,omitempty"`
	MatchedOn []string       `json:"matched_on,omitempty"`
}

// ScoreValue returns the score, or 0 for unscored results.
func (r RankedResult) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// RankOptions are the fixed ranking parameters.
type RankOptions struct {
	TopN            int
	BrowseN         int
	PriorityWeight  float64
	DefaultPriority float64
	Prefix          bool
	Fuzzy           float64
	DefaultBoost    map[string]float64
}

// Ranker blends index relevance with entry priority.
type Ranker struct {
	index   Index
	catalog *catalog.Catalog
	opts    RankOptions
}

// NewRanker creates a ranker over an index built from cat.
func NewRanker(idx Index, cat *catalog.Catalog, opts RankOptions) *Ranker {
	return &Ranker{index: idx, catalog: cat, opts: opts}
}

// BoostFor returns the field boosts for intent, or the defaults.
func (r *Ranker) BoostFor(intent *Intent) map[string]float64 {
	if intent != nil && len(intent.Boost) > 0 {
		return intent.Boost
	}
	return r.opts.DefaultBoost
}

// Rank runs one index search for the expanded query and returns the top
// results by indexScore + priority*PriorityWeight. An empty query skips
// the index and returns the head of the catalog unscored.
func (r *Ranker) Rank(expanded string, boost map[string]float64) []RankedResult {
	if expanded == "" {
		return r.browse()
	}

	hits := r.index.Search(expanded, index.Options{
		Boost:  boost,
		Prefix: r.opts.Prefix,
		Fuzzy:  r.opts.Fuzzy,
	})

	ranked := make([]RankedResult, 0, len(hits))
	for _, h := range hits {
		entry, ok := r.catalog.Lookup(h.ID)
		if !ok {
			// Index and catalog disagree; skip rather than fail the query.
			continue
		}
		score := h.Score + entry.PriorityOr(r.opts.DefaultPriority)*r.opts.PriorityWeight
		ranked = append(ranked, RankedResult{Entry: entry, Score: &score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})

	if len(ranked) > r.opts.TopN {
		ranked = ranked[:r.opts.TopN]
	}
	return ranked
}

func (r *Ranker) browse() []RankedResult {
	head := r.catalog.Head(r.opts.BrowseN)
	results := make([]RankedResult, len(head))
	for i := range head {
		results[i] = RankedResult{Entry: &head[i]}
	}
	return results
}
