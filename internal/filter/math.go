package filter

import "math"

// falsePositiveRate computes (1 - e^(-k*n/m))^k, the standard Bloom-filter false-positive
// estimate for n inserted elements, m bits, and k hash rounds.
func falsePositiveRate(n, m, k float64) float64 {
	return math.Pow(1-math.Exp(-k*n/m), k)
}
