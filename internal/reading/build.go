package reading

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SourceKanji is one record of a kanji_full.json style source file.
type SourceKanji struct {
	Strokes     int      `json:"strokes,omitempty"`
	Grade       *int     `json:"grade,omitempty"`
	Meanings    []string `json:"meanings,omitempty"`
	ReadingsOn  []string `json:"readings_on"`
	ReadingsKun []string `json:"readings_kun"`
}

// BuildStats reports what Build did with its input.
type BuildStats struct {
	Source  int // records in the source
	Kept    int // characters with at least one reading
	Skipped int // multi-rune keys or records without readings
}

// Build converts a kanji_full.json style document (character → on/kun
// readings) into a Dictionary.
func Build(r io.Reader) (*Dictionary, BuildStats, error) {
	var src map[string]SourceKanji
	if err := json.NewDecoder(r).Decode(&src); err != nil {
		return nil, BuildStats{}, fmt.Errorf("parsing source json: %w", err)
	}

	stats := BuildStats{Source: len(src)}
	entries := make(map[rune][]string, len(src))
	for char, info := range src {
		ru, err := entryRune(char)
		if err != nil {
			stats.Skipped++
			continue
		}
		readings := MergeReadings(info.ReadingsOn, info.ReadingsKun)
		if len(readings) == 0 {
			stats.Skipped++
			continue
		}
		entries[ru] = readings
		stats.Kept++
	}

	return &Dictionary{entries: entries}, stats, nil
}

// WriteJSON writes d in the format read by LoadJSON.
func WriteJSON(w io.Writer, d *Dictionary, indent bool) error {
	m := make(map[string][]string, d.Size())
	for _, e := range d.Entries() {
		m[e.Character] = e.Readings
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding dictionary: %w", err)
	}
	return nil
}

// SaveFile writes d to path, choosing JSON or SQLite from the extension.
func SaveFile(path string, d *Dictionary) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SaveSQLite(path, d)
	case ".json":
	default:
		return fmt.Errorf("unsupported output format: %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dictionary file: %w", err)
	}
	if err := WriteJSON(file, d, true); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing dictionary file: %w", err)
	}
	return nil
}
