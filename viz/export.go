// Package viz assembles the data.json payload consumed by the scatter-plot
// front end: song metadata, 2D coordinates, filter counts, and the sparse
// autoencoder's neuron rankings and activation matrix.
package viz

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/b0tShaman/sae-go/data"
	"github.com/b0tShaman/sae-go/sae"
)

const lyricsPreviewLines = 10

// NameCount is a (name, occurrence count) filter entry. It marshals as a
// two-element array to match the payload the front end expects.
type NameCount struct {
	Name  string
	Count int
}

func (nc NameCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{nc.Name, nc.Count})
}

type SongEntry struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	PrimaryArtist string   `json:"primary_artist"`
	Album         string   `json:"album"`
	Genres        []string `json:"genres"`
	LyricsPreview string   `json:"lyrics_preview"`
	Popularity    int      `json:"popularity"`
	ReleaseDate   string   `json:"release_date"`
}

type TopSong struct {
	Index      int     `json:"index"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Activation float64 `json:"activation"`
}

type Neuron struct {
	ID       int       `json:"id"`
	TopSongs []TopSong `json:"top_songs"`
}

type SAEData struct {
	Neurons     []Neuron    `json:"neurons"`
	Activations [][]float64 `json:"activations"`
}

type Filters struct {
	Genres  []NameCount `json:"genres"`
	Artists []NameCount `json:"artists"`
}

type Payload struct {
	Embeddings [][]float64 `json:"embeddings"`
	Songs      []SongEntry `json:"songs"`
	Filters    Filters     `json:"filters"`
	SAE        *SAEData    `json:"sae,omitempty"`
}

// BuildPayload joins song metadata with the 2D coordinates and, when
// rankings are provided, the SAE section. lyricsDir may be empty to skip
// lyric previews.
func BuildPayload(songs []data.Song, coords [][]float64, lyricsDir string, saeData *SAEData) (*Payload, error) {
	if len(coords) != len(songs) {
		return nil, fmt.Errorf("viz: %d coordinate rows for %d songs", len(coords), len(songs))
	}

	entries := make([]SongEntry, len(songs))
	for i, song := range songs {
		preview := ""
		if lyricsDir != "" {
			if lyrics, ok := data.GetLyrics(song.PrimaryArtist, song.Title, lyricsDir); ok {
				preview = previewOf(lyrics)
			}
		}
		entries[i] = SongEntry{
			ID:            i,
			Title:         song.Title,
			Artist:        song.Artist,
			PrimaryArtist: song.PrimaryArtist,
			Album:         song.Album,
			Genres:        song.Genres,
			LyricsPreview: preview,
			Popularity:    song.Popularity,
			ReleaseDate:   song.ReleaseDate,
		}
	}

	return &Payload{
		Embeddings: coords,
		Songs:      entries,
		Filters: Filters{
			Genres:  countSorted(genreNames(songs)),
			Artists: countSorted(artistNames(songs)),
		},
		SAE: saeData,
	}, nil
}

// BuildSAEData converts per-neuron rankings and the dense activation matrix
// into the export shape, resolving item indices to song titles.
func BuildSAEData(rankings [][]sae.Activation, acts [][]float64, songs []data.Song) *SAEData {
	neurons := make([]Neuron, len(rankings))
	for id, ranked := range rankings {
		top := make([]TopSong, 0, len(ranked))
		for _, act := range ranked {
			if act.Item < 0 || act.Item >= len(songs) {
				continue
			}
			top = append(top, TopSong{
				Index:      act.Item,
				Title:      songs[act.Item].Title,
				Artist:     songs[act.Item].Artist,
				Activation: act.Value,
			})
		}
		neurons[id] = Neuron{ID: id, TopSongs: top}
	}
	return &SAEData{Neurons: neurons, Activations: acts}
}

// WriteJSON writes the payload to path.
func WriteJSON(path string, p *Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

func previewOf(lyrics string) string {
	lines := strings.Split(lyrics, "\n")
	if len(lines) > lyricsPreviewLines {
		lines = lines[:lyricsPreviewLines]
	}
	return strings.Join(lines, "\n")
}

func genreNames(songs []data.Song) []string {
	var names []string
	for _, song := range songs {
		names = append(names, song.Genres...)
	}
	return names
}

func artistNames(songs []data.Song) []string {
	names := make([]string, len(songs))
	for i, song := range songs {
		names[i] = song.PrimaryArtist
	}
	return names
}

// countSorted tallies names and orders them by descending count, breaking
// count ties alphabetically so output is stable run to run.
func countSorted(names []string) []NameCount {
	counts := make(map[string]int)
	for _, name := range names {
		counts[name]++
	}

	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
