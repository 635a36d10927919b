package sae

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ae := newTestAE(t, 6, 10, 3, 2, false)
	ae.DeadSteps[4] = 12

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := ae.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadModel(path, 6, 10, 3, 2)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	for i := range ae.EncoderWeight.data {
		if loaded.EncoderWeight.data[i] != ae.EncoderWeight.data[i] {
			t.Fatal("encoder weight not restored")
		}
	}
	for i := range ae.DecoderWeight.data {
		if loaded.DecoderWeight.data[i] != ae.DecoderWeight.data[i] {
			t.Fatal("decoder weight not restored")
		}
	}
	for i := range ae.PreBias.data {
		if loaded.PreBias.data[i] != ae.PreBias.data[i] {
			t.Fatal("pre_bias not restored")
		}
	}
	for i := range ae.LatentBias.data {
		if loaded.LatentBias.data[i] != ae.LatentBias.data[i] {
			t.Fatal("latent_bias not restored")
		}
	}
	if loaded.DeadSteps[4] != 12 {
		t.Errorf("dead_steps not restored: %v", loaded.DeadSteps)
	}
	if loaded.K != 3 || loaded.AuxK != 2 {
		t.Errorf("hyperparameters not applied: k=%d auxk=%d", loaded.K, loaded.AuxK)
	}
}

func TestLoadShapeMismatch(t *testing.T) {
	// Persist with d_model=8, declare d_model=4: LoadError, no partial model.
	ae := newTestAE(t, 3, 8, 2, 0, false)

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := ae.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadModel(path, 3, 4, 2, 0)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("got %v, want LoadError", err)
	}
	if loaded != nil {
		t.Fatal("shape mismatch returned a partially constructed model")
	}
}

func TestLoadMissingFile(t *testing.T) {
	loaded, err := LoadModel(filepath.Join(t.TempDir(), "nope.gob"), 4, 4, 2, 0)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("got %v, want LoadError", err)
	}
	if loaded != nil {
		t.Fatal("missing file returned a model")
	}
}

func TestLoadUnreadableBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadModel(path, 4, 4, 2, 0)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("got %v, want LoadError", err)
	}
	if loaded != nil {
		t.Fatal("unreadable blob returned a model")
	}
}

func TestLoadBadHyperparameters(t *testing.T) {
	ae := newTestAE(t, 3, 4, 2, 0, false)
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := ae.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	_, err := LoadModel(path, 3, 4, 0, 0)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("got %v, want LoadError", err)
	}
}
