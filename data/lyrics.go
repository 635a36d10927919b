package data

import (
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Lyrics live under <baseDir>/<artist-slug>/<track-slug>.txt, optionally
// gzip-compressed with a .gz suffix. Readers accept either form.

var (
	// Global regex variables (compiled once at startup)
	reSlugStrip *regexp.Regexp
	reSlugSpace *regexp.Regexp
)

func init() {
	// Drop everything that is not a word character, whitespace, or hyphen,
	// then collapse whitespace runs into single hyphens.
	reSlugStrip = regexp.MustCompile(`[^\w\s-]`)
	reSlugSpace = regexp.MustCompile(`\s+`)
}

// Slugify converts free text into the filesystem-friendly form used for
// artist and track directories.
func Slugify(text string) string {
	text = strings.ToLower(text)
	text = reSlugStrip.ReplaceAllString(text, "")
	text = reSlugSpace.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

// LyricsPath returns the expected uncompressed path for a track's lyrics.
func LyricsPath(artist, track, baseDir string) string {
	return filepath.Join(baseDir, Slugify(artist), Slugify(track)+".txt")
}

// ReadLyricsFile reads a lyrics file, transparently falling back to the
// gzipped variant. The bool reports whether either file existed.
func ReadLyricsFile(path string) (string, bool, error) {
	if raw, err := os.ReadFile(path); err == nil {
		return string(raw), true, nil
	} else if !os.IsNotExist(err) {
		return "", false, err
	}

	file, err := os.Open(path + ".gz")
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return "", false, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", false, err
	}
	return string(raw), true, nil
}

// GetLyrics fetches the lyrics for an artist/track pair, if stored.
func GetLyrics(artist, track, baseDir string) (string, bool) {
	content, ok, err := ReadLyricsFile(LyricsPath(artist, track, baseDir))
	if err != nil {
		return "", false
	}
	return content, ok
}

// LyricsExists reports whether lyrics are stored for the pair, compressed or
// not.
func LyricsExists(artist, track, baseDir string) bool {
	path := LyricsPath(artist, track, baseDir)
	if _, err := os.Stat(path); err == nil {
		return true
	}
	_, err := os.Stat(path + ".gz")
	return err == nil
}

// SaveLyrics writes lyrics for a track, gzip-compressed unless compress is
// false. Parent directories are created as needed.
func SaveLyrics(lyrics, artist, track string, compress bool, baseDir string) error {
	artistDir := filepath.Join(baseDir, Slugify(artist))
	if err := os.MkdirAll(artistDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(artistDir, Slugify(track)+".txt")
	if !compress {
		return os.WriteFile(path, []byte(lyrics), 0644)
	}

	file, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	if _, err := zw.Write([]byte(lyrics)); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// CompressLyricsDir gzips every plain .txt lyrics file under baseDir and
// removes the originals. Returns how many were compressed and how many plain
// files were seen.
func CompressLyricsDir(baseDir string) (compressed, total int, err error) {
	err = filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".txt") {
			return nil
		}
		total++

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		file, err := os.Create(path + ".gz")
		if err != nil {
			return err
		}
		zw := gzip.NewWriter(file)
		if _, err := zw.Write(raw); err != nil {
			zw.Close()
			file.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}

		if err := os.Remove(path); err != nil {
			return err
		}
		compressed++
		return nil
	})
	return compressed, total, err
}
