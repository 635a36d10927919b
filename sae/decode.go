package sae

// All three decode entry points share one rule: scatter sparse values into a
// zero latent vector, multiply by the decoder, add the pre-bias. None of them
// touch DeadSteps, so they are safe to call concurrently with each other and
// with ComputeActivations.

// DecodeSparse reconstructs an input-space vector directly from a sparse code,
// e.g. the primary or auxiliary code of a forward pass.
func (ae *Autoencoder) DecodeSparse(indices []int, values []float64) ([]float64, error) {
	if len(indices) != len(values) {
		return nil, shapeErrorf("decode_sparse", "%d indices but %d values", len(indices), len(values))
	}
	if len(indices) > ae.NDirs {
		return nil, shapeErrorf("decode_sparse", "%d entries exceed n_dirs %d", len(indices), ae.NDirs)
	}

	seen := make([]bool, ae.NDirs)
	for _, idx := range indices {
		if idx < 0 || idx >= ae.NDirs {
			return nil, shapeErrorf("decode_sparse", "index %d out of range [0, %d)", idx, ae.NDirs)
		}
		if seen[idx] {
			return nil, shapeErrorf("decode_sparse", "duplicate index %d", idx)
		}
		seen[idx] = true
	}

	out := make([]float64, ae.DModel)
	copy(out, ae.PreBias.data)
	for i, idx := range indices {
		ae.accumulateDirection(out, idx, values[i])
	}
	return out, nil
}

// DecodeClamp re-selects the top clampWidth entries of an already-dense latent
// vector (non-negativity clamped) before decoding. It inspects reconstruction
// quality at a fixed sparsity budget independent of the trained k.
func (ae *Autoencoder) DecodeClamp(latents []float64, clampWidth int) ([]float64, error) {
	return ae.DecodeAtK(latents, clampWidth)
}

// DecodeAtK decodes a dense latent vector through the top-k' entries only,
// letting callers sweep sparsity at inference time without retraining.
func (ae *Autoencoder) DecodeAtK(latents []float64, k int) ([]float64, error) {
	if len(latents) != ae.NDirs {
		return nil, shapeErrorf("decode_at_k", "latent width %d, want n_dirs %d", len(latents), ae.NDirs)
	}
	if k < 1 {
		return nil, shapeErrorf("decode_at_k", "k must be positive, got %d", k)
	}
	if k > ae.NDirs {
		k = ae.NDirs
	}

	indices := topKIndices(latents, nil, k)
	out := make([]float64, ae.DModel)
	copy(out, ae.PreBias.data)
	for _, idx := range indices {
		ae.accumulateDirection(out, idx, relu(latents[idx]))
	}
	return out, nil
}

// accumulateDirection adds v times decoder column idx into out.
func (ae *Autoencoder) accumulateDirection(out []float64, idx int, v float64) {
	if v == 0 {
		return
	}
	w := ae.DecoderWeight.data
	n := ae.NDirs
	for j := 0; j < ae.DModel; j++ {
		out[j] += v * w[j*n+idx]
	}
}

// decodeDense reconstructs a whole batch of dense latent rows:
// latents * W_dec^T + pre_bias.
func (ae *Autoencoder) decodeDense(latents *Matrix) *Matrix {
	recons := NewMatrix(latents.Rows(), ae.DModel)
	MatMul(latents.dense, ae.DecoderWeight.dense.T(), recons)
	recons.AddVector(ae.PreBias)
	return recons
}
