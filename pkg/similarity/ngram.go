package similarity

// padRune marks the string boundary in padded n-grams. Normalized fields never contain it.
const padRune = '$'

// NGrams returns the set of overlapping n-rune substrings of s after padding it with
// n-1 placeholder runes on each side. An empty string has an empty set.
func NGrams(s string, n int) map[string]struct{} {
	grams := make(map[string]struct{})
	if s == "" || n < 1 {
		return grams
	}

	padded := make([]rune, 0, len(s)+2*(n-1))
	for i := 0; i < n-1; i++ {
		padded = append(padded, padRune)
	}
	padded = append(padded, []rune(s)...)
	for i := 0; i < n-1; i++ {
		padded = append(padded, padRune)
	}

	for i := 0; i+n <= len(padded); i++ {
		grams[string(padded[i:i+n])] = struct{}{}
	}
	return grams
}

// Trigrams returns the padded 3-gram set of s
func Trigrams(s string) map[string]struct{} {
	return NGrams(s, 3)
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Either set being empty yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	intersection := 0
	for g := range a {
		if _, ok := b[g]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// NGramSimilarity is the Jaccard coefficient of the padded n-gram sets of a and b
func NGramSimilarity(a, b string, n int) float64 {
	return Jaccard(NGrams(a, n), NGrams(b, n))
}
