package sae

// Activation is one (item, magnitude) entry in a per-latent ranking.
type Activation struct {
	Item  int
	Value float64
}

// ComputeActivations runs the encoder over every input row in consecutive
// chunks of at most chunkSize items and returns the dense numItems x NDirs
// activation matrix, with the same non-negativity clamp as the primary code.
//
// Chunking only bounds peak working memory; rows come out in input order and
// are identical regardless of the chunk size. Dead-step bookkeeping is
// bypassed entirely: this path exists for analysis, not training. On any
// error no partial matrix is returned.
func (ae *Autoencoder) ComputeActivations(x *Matrix, chunkSize int) (*Matrix, error) {
	if chunkSize < 1 {
		return nil, shapeErrorf("activations", "chunk size must be positive, got %d", chunkSize)
	}
	if x.Cols() != ae.DModel {
		return nil, shapeErrorf("activations", "input width %d, want d_model %d", x.Cols(), ae.DModel)
	}

	numItems := x.Rows()
	if numItems > 0 && numItems*ae.NDirs/numItems != ae.NDirs {
		return nil, &ResourceError{
			Op:  "activations",
			Msg: "activation matrix size overflows; reduce the input collection",
		}
	}

	out := NewMatrix(numItems, ae.NDirs)
	for start := 0; start < numItems; start += chunkSize {
		end := min(start+chunkSize, numItems)

		// Zero-copy view of the chunk rows.
		chunk := NewMatrixFromSlice(end-start, ae.DModel, x.data[start*ae.DModel:end*ae.DModel])

		pre, err := ae.Encode(chunk)
		if err != nil {
			return nil, err
		}
		pre.ApplyRelu()
		copy(out.data[start*ae.NDirs:end*ae.NDirs], pre.data)
	}
	return out, nil
}

// TopActivations ranks items per latent dimension by activation value,
// descending, returning at most topN entries per dimension. Exact ties rank
// the lower item index first.
func TopActivations(acts *Matrix, topN int) ([][]Activation, error) {
	if topN < 1 {
		return nil, shapeErrorf("rank", "top-n must be positive, got %d", topN)
	}

	numItems := acts.Rows()
	col := make([]float64, numItems)

	rankings := make([][]Activation, acts.Cols())
	for j := 0; j < acts.Cols(); j++ {
		acts.Col(j, col)
		indices := topKIndices(col, nil, min(topN, numItems))

		ranked := make([]Activation, len(indices))
		for i, item := range indices {
			ranked[i] = Activation{Item: item, Value: col[item]}
		}
		rankings[j] = ranked
	}
	return rankings, nil
}
