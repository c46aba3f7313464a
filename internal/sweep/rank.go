// FILE: rank.go
package sweep

import "sort"

// Rank returns results sorted by Objective descending, successes only.
// Failed points are omitted; callers inspect the raw []PointResult for
// failures.
func Rank(results []PointResult) []PointResult {
	ranked := make([]PointResult, 0, len(results))
	for _, r := range results {
		if r.Success {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Objective > ranked[j].Objective
	})
	return ranked
}

// Best returns the highest-objective successful result, or nil if every
// point failed.
func Best(results []PointResult) *PointResult {
	ranked := Rank(results)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

// Worst returns the lowest-objective successful result, or nil if every
// point failed.
func Worst(results []PointResult) *PointResult {
	ranked := Rank(results)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[len(ranked)-1]
}

// TopN returns the n highest-objective successful results, fewer if there
// are not enough successes.
func TopN(results []PointResult, n int) []PointResult {
	ranked := Rank(results)
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
