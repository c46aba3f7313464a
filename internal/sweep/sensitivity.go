// FILE: sensitivity.go
package sweep

import (
	"math"
	"sort"
)

// SensitivityRow is one (parameter, value) group's objective statistics.
type SensitivityRow struct {
	Parameter string
	Value     float64
	Mean      float64
	StdDev    float64
	Count     int
	Range     float64 // max-min of the objective within this group
}

// Sensitivity computes a per-parameter sensitivity table: for each
// parameter, group successful results by the value that parameter took and
// aggregate the objective's mean, population std-dev, count, and range
// (max-min) within each group. Rows are ordered by parameter (as they
// appear in paramNames) then by value ascending.
func Sensitivity(results []PointResult, paramNames []string) []SensitivityRow {
	var rows []SensitivityRow

	for _, name := range paramNames {
		groups := make(map[float64][]float64)
		for _, r := range results {
			if !r.Success {
				continue
			}
			v, ok := r.Parameters[name]
			if !ok {
				continue
			}
			groups[v] = append(groups[v], r.Objective)
		}

		values := make([]float64, 0, len(groups))
		for v := range groups {
			values = append(values, v)
		}
		sort.Float64s(values)

		for _, v := range values {
			objs := groups[v]
			mean, std := meanStdDev(objs)
			lo, hi := objs[0], objs[0]
			for _, o := range objs {
				if o < lo {
					lo = o
				}
				if o > hi {
					hi = o
				}
			}
			rows = append(rows, SensitivityRow{
				Parameter: name,
				Value:     v,
				Mean:      mean,
				StdDev:    std,
				Count:     len(objs),
				Range:     hi - lo,
			})
		}
	}

	return rows
}

func meanStdDev(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	var sqDiff float64
	for _, x := range xs {
		d := x - mean
		sqDiff += d * d
	}
	std = math.Sqrt(sqDiff / float64(len(xs)))
	return mean, std
}
