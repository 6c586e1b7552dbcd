package gsc

import "github.com/hbollon/go-edlib"

// suggestThreshold is the minimum Levenshtein-family similarity score (0..1)
// a candidate must reach to be offered as a "did you mean" suggestion.
// Matches standardbeagle-lci's FuzzyMatcher default threshold for the same
// family of algorithm.
const suggestThreshold = 0.80

// suggestField returns the candidate in names most similar to name by
// Levenshtein distance, if any clears suggestThreshold (SPEC_FULL.md §7,
// grounded on standardbeagle-lci's fuzzy_matcher.go use of
// edlib.StringsSimilarity(a, b, edlib.Levenshtein)).
func suggestField(name string, names []string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, candidate := range names {
		score, err := edlib.StringsSimilarity(name, candidate, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if bestScore >= suggestThreshold {
		return best, true
	}
	return "", false
}
