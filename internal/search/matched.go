package search

import (
	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/randalmurphal/service-finder/internal/textutil"
)

const matchedOnLimit = 4

// matchedOn lists up to limit distinct query tokens found in the entry,
// checking tags first, then name, then summary.
func matchedOn(entry *catalog.Entry, query string, limit int) []string {
	qTokens := textutil.TokenSet(query)
	if len(qTokens) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		if _, ok := qTokens[t]; ok && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, tag := range entry.Tags {
		add(tag)
	}
	for _, t := range textutil.Tokenize(entry.Name) {
		add(t)
	}
	for _, t := range textutil.Tokenize(entry.Summary) {
		add(t)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
