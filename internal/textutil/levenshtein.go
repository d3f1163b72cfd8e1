package textutil

// Levenshtein returns the edit distance between a and b, where insertion,
// deletion and substitution of a single character each cost 1.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	// m[i][j] is the distance between rb[:i] and ra[:j].
	m := make([][]int, len(rb)+1)
	for i := range m {
		m[i] = make([]int, len(ra)+1)
		m[i][0] = i
	}
	for j := 0; j <= len(ra); j++ {
		m[0][j] = j
	}

	for i := 1; i <= len(rb); i++ {
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				m[i][j] = m[i-1][j-1]
				continue
			}
			m[i][j] = 1 + min(m[i-1][j], m[i][j-1], m[i-1][j-1])
		}
	}
	return m[len(rb)][len(ra)]
}
