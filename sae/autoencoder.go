package sae

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultDeadStepsThreshold is the number of forward calls a latent dimension
// may go unselected before it is considered dead.
const DefaultDeadStepsThreshold = 266

// Autoencoder is a k-sparse autoencoder over fixed-width embedding vectors.
//
// DecoderWeight is stored DModel x NDirs so that each column is one latent
// direction; the unit-norm convention applies per column. EncoderWeight is
// DModel x NDirs and is applied as x * W, so after InitFromData the encoder
// starts as the decoder transpose without any data movement.
//
// Forward passes in training mode mutate DeadSteps; everything else is
// read-only with respect to the store. Callers sharing one Autoencoder across
// goroutines must serialize training-mode forward passes themselves.
type Autoencoder struct {
	NDirs  int
	DModel int
	K      int
	AuxK   int  // 0 disables the auxiliary code
	MultiK bool // enables the wider 2k regularization code

	DeadStepsThreshold int64

	PreBias       *Matrix // 1 x DModel
	LatentBias    *Matrix // 1 x NDirs
	EncoderWeight *Matrix // DModel x NDirs
	DecoderWeight *Matrix // DModel x NDirs, one column per latent direction

	// DeadSteps[i] counts forward calls since latent i last appeared in a
	// primary code. Incremented by one per training-mode forward call.
	DeadSteps []int64
}

// ForwardInfo carries everything a training harness or exporter needs from a
// single forward pass, alongside the reconstruction.
type ForwardInfo struct {
	TopKIndices [][]int
	TopKValues  [][]float64

	// Auxiliary code over dead latents. Nil when AuxK is 0 or when no
	// latent is currently dead.
	AuxKIndices [][]int
	AuxKValues  [][]float64

	// Wider sparse code and its reconstruction, used as a regularization
	// target. All nil unless MultiK.
	MultiKIndices [][]int
	MultiKValues  [][]float64
	MultiKRecons  *Matrix

	LatentsPreAct  *Matrix // dense pre-activations, no nonlinearity
	LatentsPostAct *Matrix // primary code scattered back to dense form
}

// PrimaryCode returns row b's primary sparse code.
func (info *ForwardInfo) PrimaryCode(b int) SparseCode {
	return SparseCode{Indices: info.TopKIndices[b], Values: info.TopKValues[b]}
}

// AuxCode returns row b's auxiliary sparse code, empty when no latent was
// dead during the pass.
func (info *ForwardInfo) AuxCode(b int) SparseCode {
	if info.AuxKIndices == nil {
		return SparseCode{}
	}
	return SparseCode{Indices: info.AuxKIndices[b], Values: info.AuxKValues[b]}
}

// -------- CONSTRUCTION ------- //

// NewAutoencoder allocates a zero-valued parameter store for the given
// hyperparameters. Weights are left at zero; call InitFromData or LoadModel
// to populate them.
func NewAutoencoder(nDirs, dModel, k, auxk int, multik bool, deadStepsThreshold int64) (*Autoencoder, error) {
	if nDirs < 1 || dModel < 1 {
		return nil, shapeErrorf("new", "n_dirs and d_model must be positive, got %d and %d", nDirs, dModel)
	}
	if k < 1 {
		return nil, shapeErrorf("new", "k must be positive, got %d", k)
	}
	if auxk < 0 {
		return nil, shapeErrorf("new", "auxk must not be negative, got %d", auxk)
	}
	if deadStepsThreshold < 1 {
		deadStepsThreshold = DefaultDeadStepsThreshold
	}

	return &Autoencoder{
		NDirs:              nDirs,
		DModel:             dModel,
		K:                  k,
		AuxK:               auxk,
		MultiK:             multik,
		DeadStepsThreshold: deadStepsThreshold,
		PreBias:            NewMatrix(1, dModel),
		LatentBias:         NewMatrix(1, nDirs),
		EncoderWeight:      NewMatrix(dModel, nDirs),
		DecoderWeight:      NewMatrix(dModel, nDirs),
		DeadSteps:          make([]int64, nDirs),
	}, nil
}

// InitFromData seeds the parameters from a sample of the data distribution:
// pre-bias at the per-dimension median, Xavier decoder columns rescaled to
// unit norm, encoder tied to the decoder transpose, zero latent bias.
func (ae *Autoencoder) InitFromData(sample *Matrix) error {
	if sample.Cols() != ae.DModel {
		return shapeErrorf("init", "sample width %d, want d_model %d", sample.Cols(), ae.DModel)
	}
	if sample.Rows() < 1 {
		return shapeErrorf("init", "sample is empty")
	}

	col := make([]float64, sample.Rows())
	for j := 0; j < ae.DModel; j++ {
		sample.Col(j, col)
		sort.Float64s(col)
		ae.PreBias.data[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
	}

	ae.DecoderWeight.RandomizeXavier()
	ae.UnitNormDecoder()

	// Encoder and decoder share the DModel x NDirs layout, so the tied
	// transpose initialization is a straight copy.
	copy(ae.EncoderWeight.data, ae.DecoderWeight.data)

	ae.LatentBias.Reset()
	for i := range ae.DeadSteps {
		ae.DeadSteps[i] = 0
	}
	return nil
}

// UnitNormDecoder rescales every decoder column to unit Euclidean norm, in
// place. The training harness must call this after each optimizer step so
// that code magnitude alone determines reconstruction scale. Zero columns are
// left untouched.
func (ae *Autoencoder) UnitNormDecoder() {
	for j := 0; j < ae.NDirs; j++ {
		norm := ae.DecoderWeight.ColNorm(j)
		if norm > 0 {
			ae.DecoderWeight.ScaleCol(j, 1.0/norm)
		}
	}
}

// -------- FORWARD PASS ------- //

// Encode maps a batch of input rows to dense pre-activation rows:
// (x - pre_bias) * W_enc + latent_bias. No nonlinearity is applied.
func (ae *Autoencoder) Encode(x *Matrix) (*Matrix, error) {
	if x.Cols() != ae.DModel {
		return nil, shapeErrorf("encode", "input width %d, want d_model %d", x.Cols(), ae.DModel)
	}

	centered := x.Clone()
	centered.SubVector(ae.PreBias)

	pre := NewMatrix(x.Rows(), ae.NDirs)
	MatMul(centered.dense, ae.EncoderWeight.dense, pre)
	pre.AddVector(ae.LatentBias)
	return pre, nil
}

// Forward runs the full encode / top-k / decode pipeline over a batch.
//
// When training is true the dead-step counters are updated: every counter is
// incremented by one for this call, then every latent selected by any row's
// primary code is reset to zero. Analysis callers pass false and leave the
// counters untouched; ComputeActivations bypasses them entirely.
func (ae *Autoencoder) Forward(x *Matrix, training bool) (*Matrix, *ForwardInfo, error) {
	pre, err := ae.Encode(x)
	if err != nil {
		return nil, nil, err
	}

	batch := x.Rows()
	kk := min(ae.K, ae.NDirs)

	info := &ForwardInfo{
		TopKIndices:    make([][]int, batch),
		TopKValues:     make([][]float64, batch),
		LatentsPreAct:  pre,
		LatentsPostAct: NewMatrix(batch, ae.NDirs),
	}

	// Primary code per row, scattered back into the dense post matrix.
	for b := 0; b < batch; b++ {
		row := pre.Row(b)
		indices := topKIndices(row, nil, kk)
		values := gatherClamped(row, indices)

		info.TopKIndices[b] = indices
		info.TopKValues[b] = values

		post := info.LatentsPostAct.Row(b)
		for i, idx := range indices {
			post[idx] = values[i]
		}
	}

	if training {
		ae.touchDeadSteps(info.TopKIndices)
	}

	// Auxiliary code restricted to currently-dead latents, selected from
	// the untouched pre-activations.
	if ae.AuxK > 0 {
		dead := ae.deadLatents()
		if len(dead) > 0 {
			auxK := min(ae.AuxK, len(dead))
			info.AuxKIndices = make([][]int, batch)
			info.AuxKValues = make([][]float64, batch)
			for b := 0; b < batch; b++ {
				row := pre.Row(b)
				indices := topKIndices(row, dead, auxK)
				info.AuxKIndices[b] = indices
				info.AuxKValues[b] = gatherClamped(row, indices)
			}
		}
	}

	// Wider sparse target for regularization.
	if ae.MultiK {
		mk := min(2*ae.K, ae.NDirs)
		multiLatents := NewMatrix(batch, ae.NDirs)
		info.MultiKIndices = make([][]int, batch)
		info.MultiKValues = make([][]float64, batch)
		for b := 0; b < batch; b++ {
			row := pre.Row(b)
			indices := topKIndices(row, nil, mk)
			values := gatherClamped(row, indices)
			info.MultiKIndices[b] = indices
			info.MultiKValues[b] = values

			out := multiLatents.Row(b)
			for i, idx := range indices {
				out[idx] = values[i]
			}
		}
		info.MultiKRecons = ae.decodeDense(multiLatents)
	}

	recons := ae.decodeDense(info.LatentsPostAct)
	return recons, info, nil
}

// touchDeadSteps applies one batch update: +1 everywhere, then zero for the
// union of selected indices.
func (ae *Autoencoder) touchDeadSteps(selected [][]int) {
	for i := range ae.DeadSteps {
		ae.DeadSteps[i]++
	}
	for _, indices := range selected {
		for _, idx := range indices {
			ae.DeadSteps[idx] = 0
		}
	}
}

// deadLatents lists the dimensions whose staleness exceeds the threshold,
// in ascending order.
func (ae *Autoencoder) deadLatents() []int {
	var dead []int
	for i, steps := range ae.DeadSteps {
		if steps > ae.DeadStepsThreshold {
			dead = append(dead, i)
		}
	}
	return dead
}
