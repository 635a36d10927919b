package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Song is one row of the track metadata export.
type Song struct {
	Title         string
	Artist        string
	PrimaryArtist string
	Album         string
	Genres        []string
	Popularity    int
	ReleaseDate   string
}

// LoadEmbeddingsCSV reads a headerless CSV of float rows. Every row must have
// the same width; the caller flattens the result into a Matrix.
func LoadEmbeddingsCSV(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	width := len(records[0])
	rows := make([][]float64, len(records))
	for i, record := range records {
		if len(record) != width {
			return nil, fmt.Errorf("%s row %d has %d fields, want %d", path, i, len(record), width)
		}
		row := make([]float64, width)
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %v", path, i, j, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// LoadSongsCSV reads track metadata keyed by header names, in the column
// layout of the playlist export (Track Name, Artist Name(s), Album Name,
// Genres, Popularity, Release Date). Missing optional columns are tolerated.
func LoadSongsCSV(path string) ([]Song, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		colIdx[strings.TrimSpace(name)] = i
	}
	if _, ok := colIdx["Track Name"]; !ok {
		return nil, fmt.Errorf("%s missing required column %q", path, "Track Name")
	}
	if _, ok := colIdx["Artist Name(s)"]; !ok {
		return nil, fmt.Errorf("%s missing required column %q", path, "Artist Name(s)")
	}

	field := func(record []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	songs := make([]Song, 0, len(records)-1)
	for _, record := range records[1:] {
		artist := field(record, "Artist Name(s)")

		var genres []string
		if raw := field(record, "Genres"); raw != "" {
			for _, g := range strings.Split(raw, ",") {
				if g = strings.TrimSpace(g); g != "" {
					genres = append(genres, g)
				}
			}
		}

		popularity := 0
		if raw := field(record, "Popularity"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				popularity = v
			}
		}

		songs = append(songs, Song{
			Title:         field(record, "Track Name"),
			Artist:        artist,
			PrimaryArtist: PrimaryArtist(artist),
			Album:         field(record, "Album Name"),
			Genres:        genres,
			Popularity:    popularity,
			ReleaseDate:   field(record, "Release Date"),
		})
	}
	return songs, nil
}

// PrimaryArtist picks the first name out of a comma-separated artist list.
func PrimaryArtist(artists string) string {
	if artists == "" {
		return "Unknown"
	}
	first, _, _ := strings.Cut(artists, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return "Unknown"
	}
	return first
}
