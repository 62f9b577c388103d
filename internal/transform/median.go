package transform

import "slices"

// median returns the standard median of vs: the middle value for odd n, the
// mean of the two middle values for even n. An empty slice yields fallback.
// The input is not mutated.
func median(vs []float64, fallback float64) float64 {
	if len(vs) == 0 {
		return fallback
	}
	sorted := slices.Clone(vs)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
