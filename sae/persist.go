package sae

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Persisted parameter names. The blob is a named map so the on-disk format
// survives field reordering; hyperparameters are deliberately NOT embedded,
// the caller declares them at load time.
const (
	paramEncoderWeight = "encoder_weight"
	paramDecoderWeight = "decoder_weight"
	paramPreBias       = "pre_bias"
	paramLatentBias    = "latent_bias"
	paramDeadSteps     = "dead_steps"
)

type modelBlob struct {
	Params map[string]*Matrix
}

// SaveToFile writes the full parameter store, dead-step counters included.
func (ae *Autoencoder) SaveToFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	deadSteps := NewMatrix(1, ae.NDirs)
	for i, steps := range ae.DeadSteps {
		deadSteps.data[i] = float64(steps)
	}

	blob := modelBlob{Params: map[string]*Matrix{
		paramEncoderWeight: ae.EncoderWeight,
		paramDecoderWeight: ae.DecoderWeight,
		paramPreBias:       ae.PreBias,
		paramLatentBias:    ae.LatentBias,
		paramDeadSteps:     deadSteps,
	}}

	fmt.Println("Saving model to", path)
	return gob.NewEncoder(file).Encode(blob)
}

// LoadModel reconstructs an Autoencoder from a persisted blob, validating
// every stored tensor against the declared hyperparameters before anything is
// applied. All failures come back as *LoadError and never yield a partially
// constructed model; callers typically report the error and continue without
// the subsystem.
//
// The loaded model is inference-ready: the multi-k regularization code is
// disabled and the dead-step threshold is the default.
func LoadModel(path string, nDirs, dModel, k, auxk int) (*Autoencoder, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	var blob modelBlob
	if err := gob.NewDecoder(file).Decode(&blob); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to decode gob blob: %v", err)}
	}

	ae, err := NewAutoencoder(nDirs, dModel, k, auxk, false, DefaultDeadStepsThreshold)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	// --- VALIDATION STEP ---
	checkDims := func(name string, wantRows, wantCols int) (*Matrix, error) {
		loaded, ok := blob.Params[name]
		if !ok {
			return nil, fmt.Errorf("missing parameter %q", name)
		}
		if loaded.rows != wantRows || loaded.cols != wantCols {
			return nil, fmt.Errorf("%s shape mismatch: expected [%d, %d], got [%d, %d]",
				name, wantRows, wantCols, loaded.rows, loaded.cols)
		}
		return loaded, nil
	}

	encoderW, err := checkDims(paramEncoderWeight, dModel, nDirs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	decoderW, err := checkDims(paramDecoderWeight, dModel, nDirs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	preBias, err := checkDims(paramPreBias, 1, dModel)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	latentBias, err := checkDims(paramLatentBias, 1, nDirs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	deadSteps, err := checkDims(paramDeadSteps, 1, nDirs)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	// --- APPLICATION STEP ---
	// Safe to populate now.
	copy(ae.EncoderWeight.data, encoderW.data)
	copy(ae.DecoderWeight.data, decoderW.data)
	copy(ae.PreBias.data, preBias.data)
	copy(ae.LatentBias.data, latentBias.data)
	for i := range ae.DeadSteps {
		ae.DeadSteps[i] = int64(deadSteps.data[i])
	}

	fmt.Println("Weights loaded successfully.")
	return ae, nil
}
