package util

import "github.com/sahilm/fuzzy"

// RankMatches returns the indexes of candidates that fuzzy-match input,
// best match first, capped at n (n <= 0 means no cap). Empty input matches
// nothing.
func RankMatches(input string, candidates []string, n int) []int {
	if input == "" {
		return nil
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]int, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Index
	}
	return out
}

// ScoreCompletions returns the top n candidate strings for input. Empty
// input returns every candidate, which suits shell completion.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	idx := RankMatches(input, candidates, n)
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}
