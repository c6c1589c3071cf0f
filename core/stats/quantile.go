package stats

import (
	"math"
	"sort"
)

// Quantile estimates the p-quantile of values using linear interpolation
// between the two closest order statistics. The input is not modified.
// Returns 0 for an empty slice and the single value for a slice of one.
func Quantile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	position := float64(n-1) * p
	lo := int(math.Floor(position))
	hi := lo + 1
	if hi > n-1 {
		hi = n - 1
	}
	frac := position - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
