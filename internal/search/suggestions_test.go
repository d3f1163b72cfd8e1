package search

import (
	"testing"

	"github.com/randalmurphal/service-finder/internal/config"
	"github.com/stretchr/testify/assert"
)

func newTestGenerator(vocab []string) *SuggestionGenerator {
	return NewSuggestionGenerator(vocab, config.DefaultQuickStarts(), SuggestOptions{
		MaxResults:    2,
		Limit:         5,
		MaxLengthDiff: 3,
		MaxDistance:   2,
	})
}

var civicVocab = []string{"trash", "recycling", "pothole", "water", "permit", "parking", "police"}

func TestGenerateSuggestions(t *testing.T) {
	gen := newTestGenerator(civicVocab)

	tests := []struct {
		name     string
		query    string
		results  int
		expected []string
	}{
		{"substring match", "pot", 0, []string{"pothole"}},
		{"edit distance match", "trsh", 1, []string{"trash"}},
		{"case insensitive", "  TRSH ", 0, []string{"trash"}},
		{"at the result threshold", "trsh", 2, []string{"trash"}},
		{"falls back to quick starts", "zzzzzzzz", 0, config.DefaultQuickStarts()[:5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gen.Generate(tt.query, tt.results))
		})
	}
}

func TestGenerateSuggestionsGating(t *testing.T) {
	gen := newTestGenerator(civicVocab)

	assert.Nil(t, gen.Generate("", 0), "blank query")
	assert.Nil(t, gen.Generate("   ", 0), "whitespace query")
	assert.Nil(t, gen.Generate("trsh", 3), "enough results")
	assert.Nil(t, gen.Generate("zzzzzzzz", 12), "no fallback when results are plentiful")
}

func TestGenerateSuggestionsOrdering(t *testing.T) {
	// "ant" is a distance match and comes before "cart" in the vocabulary,
	// but direct substring matches always lead.
	gen := newTestGenerator([]string{"ant", "cart"})
	assert.Equal(t, []string{"cart", "ant"}, gen.Generate("art", 0))
}

func TestGenerateSuggestionsLimit(t *testing.T) {
	gen := newTestGenerator([]string{"bag", "cab", "dab", "fad", "gas", "had", "jam"})

	got := gen.Generate("a", 0)
	assert.Equal(t, []string{"bag", "cab", "dab", "fad", "gas"}, got)
}

func TestGenerateSuggestionsNegativeLimit(t *testing.T) {
	gen := NewSuggestionGenerator(civicVocab, config.DefaultQuickStarts(), SuggestOptions{
		MaxResults: 2,
		Limit:      -1,
	})

	assert.NotPanics(t, func() {
		assert.Empty(t, gen.Generate("trash", 0))
	})
}

func TestGenerateSuggestionsEmptyVocabulary(t *testing.T) {
	gen := newTestGenerator(nil)
	assert.Equal(t, config.DefaultQuickStarts()[:5], gen.Generate("trash", 0))
}

func TestMatchedOn(t *testing.T) {
	entry := fixtureEntries()[2] // trash

	assert.Equal(t, []string{"trash", "collection"}, matchedOn(&entry, "Trash collection schedule day", 2))
	assert.Equal(t, []string{"trash", "recycling", "pickup", "weekly"},
		matchedOn(&entry, "weekly pickup recycling trash curbside", matchedOnLimit))
	assert.Empty(t, matchedOn(&entry, "dragon", matchedOnLimit))
	assert.Empty(t, matchedOn(&entry, "  ", matchedOnLimit))
}
