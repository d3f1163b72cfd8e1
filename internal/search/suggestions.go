package search

import (
	"strings"

	"github.com/randalmurphal/service-finder/internal/textutil"
)

// SuggestOptions tunes "did you mean" generation.
type SuggestOptions struct {
	MaxResults    int // suggest only when the result count is at most this
	Limit         int
	MaxLengthDiff int
	MaxDistance   int
}

// SuggestionGenerator proposes vocabulary terms for sparse result sets.
type SuggestionGenerator struct {
	vocabulary  []string
	quickStarts []string
	opts        SuggestOptions
}

// NewSuggestionGenerator creates a generator over a fixed vocabulary.
func NewSuggestionGenerator(vocabulary, quickStarts []string, opts SuggestOptions) *SuggestionGenerator {
	return &SuggestionGenerator{
		vocabulary:  vocabulary,
		quickStarts: quickStarts,
		opts:        opts,
	}
}

// Generate returns up to Limit vocabulary terms close to the query, or
// nil when the query is blank or results are plentiful. Terms containing
// the query come first, then terms within MaxDistance edits. With no
// candidates at all it falls back to the quick-start list.
func (g *SuggestionGenerator) Generate(query string, resultCount int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || resultCount > g.opts.MaxResults {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []string
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			candidates = append(candidates, term)
		}
	}

	for _, term := range g.vocabulary {
		if strings.Contains(term, q) {
			add(term)
		}
	}

	qlen := len([]rune(q))
	for _, term := range g.vocabulary {
		if abs(len([]rune(term))-qlen) > g.opts.MaxLengthDiff {
			continue
		}
		if textutil.Levenshtein(term, q) <= g.opts.MaxDistance {
			add(term)
		}
	}

	if len(candidates) == 0 {
		return head(g.quickStarts, g.opts.Limit)
	}
	return head(candidates, g.opts.Limit)
}

func head(s []string, n int) []string {
	n = max(0, min(n, len(s)))
	out := make([]string, n)
	copy(out, s[:n])
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
