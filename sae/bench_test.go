package sae

import (
	"math/rand"
	"testing"
)

// --- Global Variables to prevent compiler optimizations ---
var benchRecons *Matrix
var benchActs *Matrix
var benchVec []float64

// setupBenchAE prepares a production-sized autoencoder and a random batch.
func setupBenchAE(b *testing.B, batchSize int) (*Autoencoder, *Matrix) {
	ae, err := NewAutoencoder(64, 1536, 2, 4, false, 0)
	if err != nil {
		b.Fatalf("NewAutoencoder: %v", err)
	}
	ae.EncoderWeight.Randomize()
	ae.DecoderWeight.Randomize()
	ae.UnitNormDecoder()

	inputData := make([]float64, batchSize*1536)
	for i := range inputData {
		inputData[i] = rand.Float64()
	}
	return ae, NewMatrixFromSlice(batchSize, 1536, inputData)
}

// Benchmark: Forward Pass (Inference Speed)
func benchmarkForward(b *testing.B, batchSize int) {
	ae, input := setupBenchAE(b, batchSize)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		recons, _, err := ae.Forward(input, false)
		if err != nil {
			b.Fatal(err)
		}
		benchRecons = recons
	}
}

func BenchmarkForward_Batch_1(b *testing.B)   { benchmarkForward(b, 1) }
func BenchmarkForward_Batch_64(b *testing.B)  { benchmarkForward(b, 64) }
func BenchmarkForward_Batch_128(b *testing.B) { benchmarkForward(b, 128) }

// Benchmark: Batch Activation Computer at different chunk sizes
func benchmarkActivations(b *testing.B, chunkSize int) {
	ae, input := setupBenchAE(b, 1024)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		acts, err := ae.ComputeActivations(input, chunkSize)
		if err != nil {
			b.Fatal(err)
		}
		benchActs = acts
	}
}

func BenchmarkActivations_Chunk_64(b *testing.B)   { benchmarkActivations(b, 64) }
func BenchmarkActivations_Chunk_256(b *testing.B)  { benchmarkActivations(b, 256) }
func BenchmarkActivations_Chunk_1024(b *testing.B) { benchmarkActivations(b, 1024) }

// Benchmark: Sparse Decode (Latency sensitive single-vector path)
func BenchmarkDecodeSparse(b *testing.B) {
	ae, _ := setupBenchAE(b, 1)
	indices := []int{3, 17, 41}
	values := []float64{1.2, 0.4, 0.9}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		out, err := ae.DecodeSparse(indices, values)
		if err != nil {
			b.Fatal(err)
		}
		benchVec = out
	}
}
