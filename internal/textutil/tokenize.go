// Package textutil provides the text normalization shared by the index and
// the query pipeline.
package textutil

import "strings"

// Tokenize lowercases s and splits it into runs of ASCII letters and digits.
// Every other character is a separator. The result never contains empty
// tokens.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !isAlnum(r)
	})
}

// TokenSet returns the distinct tokens of s.
func TokenSet(s string) map[string]struct{} {
	tokens := Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
