package search

import "strings"

// ExpandQuery appends the intent's expansion terms that the query does not
// already contain. It never removes user text.
func ExpandQuery(raw string, intent *Intent) string {
	q := strings.TrimSpace(raw)
	if intent == nil {
		return q
	}

	lower := strings.ToLower(q)
	var extras []string
	for _, term := range intent.Expand {
		if term != "" && !strings.Contains(lower, term) {
			extras = append(extras, term)
		}
	}
	if len(extras) == 0 {
		return q
	}

	return strings.TrimSpace(q + " " + strings.Join(extras, " "))
}
