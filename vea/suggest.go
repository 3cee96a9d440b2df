package vea

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// closestName picks the candidate most likely meant by target: the best
// fuzzy subsequence match, or failing that the nearest name by edit
// distance when it is close enough to be a typo.
func closestName(target string, candidates []string) string {
	if len(candidates) == 0 || target == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best := ""
	bestDistance := len(target)/3 + 1
	for _, candidate := range candidates {
		distance := fuzzy.LevenshteinDistance(target, candidate)
		if distance <= bestDistance && (best == "" || distance < bestDistance) {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}
