// FILE: correlation.go
package sweep

import "math"

// CorrelationMatrix computes the Pearson correlation matrix between each
// named parameter column and the objective column, over successful results
// only. columns[i][j] is corr(paramNames[i], paramNames[j]) for i,j <
// len(paramNames), with an extra trailing row/column for the objective
// itself (index len(paramNames)). Labels mirrors the row/column order.
type CorrelationMatrix struct {
	Labels []string
	Values [][]float64
}

// Correlation builds the matrix described above. Parameters with zero
// variance across the successful results (a constant column) produce NaN
// correlations against every other column, per the usual Pearson
// definition at a zero denominator.
func Correlation(results []PointResult, paramNames []string) CorrelationMatrix {
	labels := append(append([]string{}, paramNames...), "objective")
	n := len(labels)

	columns := make([][]float64, n)
	for i := range paramNames {
		columns[i] = make([]float64, 0, len(results))
	}
	columns[n-1] = make([]float64, 0, len(results))

	for _, r := range results {
		if !r.Success {
			continue
		}
		for i, name := range paramNames {
			columns[i] = append(columns[i], r.Parameters[name])
		}
		columns[n-1] = append(columns[n-1], r.Objective)
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		for j := range values[i] {
			values[i][j] = pearson(columns[i], columns[j])
		}
	}

	return CorrelationMatrix{Labels: labels, Values: values}
}

func pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	meanA, _ := meanStdDev(a)
	meanB, _ := meanStdDev(b)

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}
