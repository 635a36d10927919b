package sae

// SparseCode is a latent vector represented by its nonzero positions only.
// Indices are pairwise distinct and values are non-negative.
type SparseCode struct {
	Indices []int
	Values  []float64
}

// topKIndices selects the k largest entries of row, scanning only candidates
// (all positions when candidates is nil). Ties are broken deterministically:
// the lowest index wins. Returned indices are ordered by descending value.
func topKIndices(row []float64, candidates []int, k int) []int {
	if candidates == nil {
		candidates = allIndices(len(row))
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	picked := make([]bool, len(row))
	out := make([]int, 0, k)
	for n := 0; n < k; n++ {
		best := -1
		for _, idx := range candidates {
			if picked[idx] {
				continue
			}
			// Strict comparison keeps the first-seen (lowest) index
			// on exact ties.
			if best == -1 || row[idx] > row[best] {
				best = idx
			}
		}
		picked[best] = true
		out = append(out, best)
	}
	return out
}

// gatherClamped reads the selected values and applies the non-negativity
// clamp, so sparse codes never carry negative magnitudes.
func gatherClamped(row []float64, indices []int) []float64 {
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = relu(row[idx])
	}
	return values
}

func relu(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
