package action

import "sort"

// Rank orders actions most-used first according to the given usage
// snapshot. Missing stats count as zero clicks. The sort is stable so
// that, absent usage data, the suggester's own ordering survives.
func Rank(actions []Action, stats UsageStats) []Action {
	ranked := make([]Action, len(actions))
	copy(ranked, actions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return stats[ranked[i].ID].Clicks > stats[ranked[j].ID].Clicks
	})
	return ranked
}
