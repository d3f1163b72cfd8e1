// Package search provides the rule-based query understanding and ranking
// pipeline for the service catalog.
package search

import (
	"strings"

	"github.com/randalmurphal/service-finder/internal/config"
)

// Intent is a configured trigger pattern with its response message,
// expansion terms and field boosts.
type Intent struct {
	ID       string             `json:"id"`
	Triggers []string           `json:"triggers"`
	Message  string             `json:"message"`
	Expand   []string           `json:"expand,omitempty"`
	Boost    map[string]float64 `json:"boost"`
	// Order is the intent's precedence. Lower wins ties on hit count.
	Order int `json:"order"`
}

// Classifier picks at most one intent for a query.
type Classifier struct {
	intents []Intent // ascending Order
}

// NewClassifier creates a classifier. Intent precedence is the order of
// the given slice; Order fields are assigned from it.
func NewClassifier(intents []config.IntentConfig) *Classifier {
	c := &Classifier{intents: make([]Intent, 0, len(intents))}
	for i, in := range intents {
		triggers := make([]string, 0, len(in.Triggers))
		for _, t := range in.Triggers {
			if t = strings.ToLower(t); t != "" {
				triggers = append(triggers, t)
			}
		}
		expand := make([]string, 0, len(in.Expand))
		for _, x := range in.Expand {
			expand = append(expand, strings.ToLower(x))
		}
		c.intents = append(c.intents, Intent{
			ID:       in.ID,
			Triggers: triggers,
			Message:  in.Message,
			Expand:   expand,
			Boost:    in.Boost,
			Order:    i,
		})
	}
	return c
}

// Intents returns the configured intents in precedence order.
func (c *Classifier) Intents() []Intent {
	return c.intents
}

// Classify returns the intent with the most trigger phrases contained in
// the query, or nil. Triggers match as substrings, so multi-word triggers
// like "late fee" work. On equal hit counts the lower Order wins.
func (c *Classifier) Classify(query string) *Intent {
	lower := strings.ToLower(query)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var best *Intent
	bestHits := 0
	for i := range c.intents {
		in := &c.intents[i]
		hits := 0
		for _, t := range in.Triggers {
			if strings.Contains(lower, t) {
				hits++
			}
		}
		// Strictly greater: earlier intents keep ties.
		if hits > bestHits {
			bestHits = hits
			best = in
		}
	}

	return best
}
