package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/b0tShaman/sae-go/data"
	"github.com/b0tShaman/sae-go/sae"
	"github.com/b0tShaman/sae-go/viz"
)

// -------- MAIN -------- //
func main() {
	embeddingsFile := flag.String("embeddings", "assets/embeddings.csv", "full-dimensional embeddings CSV")
	coordsFile := flag.String("coords", "assets/coords_2d.csv", "precomputed 2D coordinates CSV")
	songsFile := flag.String("songs", "assets/songs.csv", "track metadata CSV")
	lyricsDir := flag.String("lyrics", "songs", "lyrics storage directory (empty to skip previews)")
	modelFile := flag.String("model", "assets/sae_model.gob", "sparse autoencoder weights")
	outFile := flag.String("out", "web/data.json", "visualization payload output")

	nDirs := flag.Int("ndirs", 32, "number of latent directions")
	k := flag.Int("k", 2, "sparsity parameter")
	auxk := flag.Int("auxk", 4, "auxiliary k parameter")
	chunkSize := flag.Int("chunk", 1024, "activation computation chunk size")
	topN := flag.Int("topn", 5, "top songs reported per neuron")

	serve := flag.Bool("serve", false, "serve the web directory after export")
	webDir := flag.String("web", "web", "static web directory")
	port := flag.Int("port", 8000, "port for -serve")
	flag.Parse()

	// 1. Load Data
	fmt.Println("Loading dataset...")

	rows, err := data.LoadEmbeddingsCSV(*embeddingsFile)
	if err != nil {
		fmt.Println("Error loading embeddings:", err)
		os.Exit(1)
	}
	coords, err := data.LoadEmbeddingsCSV(*coordsFile)
	if err != nil {
		fmt.Println("Error loading 2D coordinates:", err)
		os.Exit(1)
	}
	songs, err := data.LoadSongsCSV(*songsFile)
	if err != nil {
		fmt.Println("Error loading song metadata:", err)
		os.Exit(1)
	}

	dModel := len(rows[0])
	fmt.Printf("Loaded %d songs with %d dimensional embeddings\n", len(songs), dModel)

	// Create Global Matrix (Zero Copy)
	embeddings := sae.NewMatrixFromSlice(len(rows), dModel, sae.Flatten(rows))

	// 2. Load the sparse autoencoder, if available. A load failure is
	// reported and the export continues without SAE features.
	var saeData *viz.SAEData
	model, err := sae.LoadModel(*modelFile, *nDirs, dModel, *k, *auxk)
	if err != nil {
		fmt.Printf("⚠️ SAE unavailable (%v). Continuing without neuron features.\n", err)
	} else {
		fmt.Println("Computing neuron activations...")
		acts, err := model.ComputeActivations(embeddings, *chunkSize)
		if err != nil {
			fmt.Println("Error computing activations:", err)
			os.Exit(1)
		}

		rankings, err := sae.TopActivations(acts, *topN)
		if err != nil {
			fmt.Println("Error ranking activations:", err)
			os.Exit(1)
		}

		actRows := make([][]float64, acts.Rows())
		for i := range actRows {
			row := make([]float64, acts.Cols())
			copy(row, acts.Row(i))
			actRows[i] = row
		}
		saeData = viz.BuildSAEData(rankings, actRows, songs)
		fmt.Printf("Generated SAE data for %d neurons\n", *nDirs)
	}

	// 3. Export
	payload, err := viz.BuildPayload(songs, coords, *lyricsDir, saeData)
	if err != nil {
		fmt.Println("Error building payload:", err)
		os.Exit(1)
	}
	fmt.Printf("Saving visualization data to %s...\n", *outFile)
	if err := viz.WriteJSON(*outFile, payload); err != nil {
		fmt.Println("Error writing payload:", err)
		os.Exit(1)
	}
	fmt.Println("Data preparation complete!")

	// 4. Optional static server
	if *serve {
		addr := fmt.Sprintf(":%d", *port)
		fmt.Printf("Serving at http://localhost%s\n", addr)
		if err := http.ListenAndServe(addr, http.FileServer(http.Dir(*webDir))); err != nil {
			fmt.Println("Server error:", err)
			os.Exit(1)
		}
	}
}
