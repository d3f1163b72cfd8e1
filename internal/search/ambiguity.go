package search

import "math"

const clarifierPrompt = "Quick question: did you mean:"

// Clarifier asks the user to choose between two near-tied results.
type Clarifier struct {
	Prompt  string         `json:"prompt"`
	Options []ClarifierOpt `json:"options"`
}

// ClarifierOpt is one selectable refinement.
type ClarifierOpt struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// Clarify returns a clarifier when the second result scores within ratio
// of the first (strictly greater than ratio), otherwise nil. A zero top
// score is never ambiguous.
func Clarify(raw string, results []RankedResult, ratio float64) *Clarifier {
	if len(results) < 2 {
		return nil
	}
	first, second := results[0], results[1]
	if first.Score == nil || second.Score == nil {
		return nil
	}

	r := *second.Score / *first.Score
	if math.IsNaN(r) || math.IsInf(r, 0) || !(r > ratio) {
		return nil
	}

	return &Clarifier{
		Prompt: clarifierPrompt,
		Options: []ClarifierOpt{
			{Label: first.Entry.Name, Query: raw + " " + first.Entry.Name},
			{Label: second.Entry.Name, Query: raw + " " + second.Entry.Name},
		},
	}
}
