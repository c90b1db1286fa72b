package match

import "strings"

// Closest returns the candidate nearest to word, compared case-insensitively,
// when it is at most maxDistance edits away. Ties go to the earlier
// candidate. An exact match is not a suggestion.
func Closest(word string, candidates []string, maxDistance int) (string, bool) {
	word = strings.ToLower(word)

	best, bestDist := "", maxDistance+1

	for _, c := range candidates {
		d := Levenshtein(word, strings.ToLower(c))
		if d == 0 {
			return "", false
		}

		if d < bestDist {
			best, bestDist = c, d
		}
	}

	return best, best != ""
}
