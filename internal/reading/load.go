package reading

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/furi/internal/kana"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.json
var defaultTable []byte

// Default returns the dictionary compiled into the binary. It covers the
// most common kanji and is used when no dictionary file is configured.
func Default() *Dictionary {
	d, err := LoadJSON(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("reading: embedded table is invalid: %v", err))
	}
	return d
}

// LoadFile loads a dictionary, choosing the format from the file extension:
// .json, .jsonl, .yaml/.yml, .xml (kanjidic2), .db/.sqlite.
func LoadFile(path string) (*Dictionary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(file)
	case ".jsonl":
		return LoadJSONL(file)
	case ".yaml", ".yml":
		return LoadYAML(file)
	case ".xml":
		return LoadKanjidic2(file)
	default:
		return nil, fmt.Errorf("unsupported dictionary format: %s", path)
	}
}

// LoadJSON reads an object mapping each character to its readings:
//
//	{"漢": ["かん"], "字": ["じ", "あざ"]}
func LoadJSON(r io.Reader) (*Dictionary, error) {
	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing dictionary json: %w", err)
	}

	entries := make(map[rune][]string, len(raw))
	for char, readings := range raw {
		ru, err := entryRune(char)
		if err != nil {
			return nil, err
		}
		cleaned, err := cleanReadings(char, readings)
		if err != nil {
			return nil, err
		}
		entries[ru] = cleaned
	}
	return &Dictionary{entries: entries}, nil
}

// LoadJSONL reads one Entry object per line. Malformed lines are skipped.
func LoadJSONL(r io.Reader) (*Dictionary, error) {
	entries := make(map[rune][]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		ru, err := entryRune(e.Character)
		if err != nil {
			continue
		}
		cleaned, err := cleanReadings(e.Character, e.Readings)
		if err != nil {
			continue
		}
		entries[ru] = cleaned
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary file: %w", err)
	}
	return &Dictionary{entries: entries}, nil
}

// yamlFile is the on-disk YAML layout.
type yamlFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadYAML reads a YAML document with an entries list.
func LoadYAML(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary file: %w", err)
	}

	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing dictionary yaml: %w", err)
	}
	return FromEntries(f.Entries)
}

type kanjidic2Character struct {
	Literal        string `xml:"literal"`
	ReadingMeaning struct {
		RMGroup []struct {
			Reading []struct {
				Value string `xml:",chardata"`
				Type  string `xml:"r_type,attr"`
			} `xml:"reading"`
		} `xml:"rmgroup"`
	} `xml:"reading_meaning"`
}

// LoadKanjidic2 streams a KANJIDIC2 XML file. On'yomi come first (converted
// to hiragana), then kun'yomi with okurigana removed.
func LoadKanjidic2(r io.Reader) (*Dictionary, error) {
	entries := make(map[rune][]string)

	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing kanjidic2: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "character" {
			continue
		}

		var c kanjidic2Character
		if err := d.DecodeElement(&c, &se); err != nil {
			return nil, fmt.Errorf("decoding kanjidic2 character: %w", err)
		}
		if utf8.RuneCountInString(c.Literal) != 1 {
			continue
		}

		var on, kun []string
		for _, group := range c.ReadingMeaning.RMGroup {
			for _, rd := range group.Reading {
				switch rd.Type {
				case "ja_on":
					on = append(on, rd.Value)
				case "ja_kun":
					kun = append(kun, rd.Value)
				}
			}
		}

		readings := MergeReadings(on, kun)
		if len(readings) == 0 {
			continue
		}
		ru, _ := utf8.DecodeRuneInString(c.Literal)
		entries[ru] = readings
	}

	return &Dictionary{entries: entries}, nil
}

// MergeReadings combines on'yomi and kun'yomi into one ordered candidate
// list without duplicates. On'yomi are folded to hiragana; kun'yomi lose
// their okurigana ("はな.す" → "はな") and affix dashes.
func MergeReadings(on, kun []string) []string {
	seen := make(map[string]bool, len(on)+len(kun))
	var out []string
	add := func(rd string) {
		if rd == "" || seen[rd] {
			return
		}
		seen[rd] = true
		out = append(out, rd)
	}

	for _, rd := range on {
		add(NormalizeReading(rd))
	}
	for _, rd := range kun {
		add(NormalizeReading(rd))
	}
	return out
}

// NormalizeReading converts a raw dictionary reading to the plain hiragana
// stem used for matching.
func NormalizeReading(rd string) string {
	if i := strings.IndexRune(rd, '.'); i >= 0 {
		rd = rd[:i]
	}
	rd = strings.Trim(rd, "-")
	return kana.ToHiragana(rd)
}
