// Package reading holds the kanji reading knowledge base: a read-only table
// from a single character to its candidate readings, most common first.
package reading

import (
	"fmt"
	"sort"
	"sync/atomic"
	"unicode/utf8"
)

// Entry is one character with its ordered candidate readings.
type Entry struct {
	Character string   `json:"character" yaml:"character"`
	Readings  []string `json:"readings" yaml:"readings"`
}

// Dictionary is an immutable character → readings table.
type Dictionary struct {
	entries map[rune][]string
}

// New builds a Dictionary from m. The map and its slices are copied, so later
// changes to m are not observed.
func New(m map[rune][]string) *Dictionary {
	entries := make(map[rune][]string, len(m))
	for r, readings := range m {
		entries[r] = append([]string(nil), readings...)
	}
	return &Dictionary{entries: entries}
}

// FromEntries builds a Dictionary from a list of entries. Each character must
// be exactly one rune and every reading non-empty; duplicates are rejected.
func FromEntries(list []Entry) (*Dictionary, error) {
	entries := make(map[rune][]string, len(list))
	for _, e := range list {
		r, err := entryRune(e.Character)
		if err != nil {
			return nil, err
		}
		if _, exists := entries[r]; exists {
			return nil, fmt.Errorf("duplicate character found: %s", e.Character)
		}
		readings, err := cleanReadings(e.Character, e.Readings)
		if err != nil {
			return nil, err
		}
		entries[r] = readings
	}
	return &Dictionary{entries: entries}, nil
}

// Empty returns a dictionary with no entries.
func Empty() *Dictionary {
	return &Dictionary{entries: map[rune][]string{}}
}

// Lookup returns the candidate readings for r. The boolean is false when r
// has no entry, which is distinct from an entry with no readings.
func (d *Dictionary) Lookup(r rune) ([]string, bool) {
	if d == nil {
		return nil, false
	}
	readings, ok := d.entries[r]
	return readings, ok
}

// First returns the most preferred reading for r.
func (d *Dictionary) First(r rune) (string, bool) {
	readings, ok := d.Lookup(r)
	if !ok || len(readings) == 0 {
		return "", false
	}
	return readings[0], true
}

// Size returns the number of entries in the dictionary.
func (d *Dictionary) Size() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns all entries sorted by code point.
func (d *Dictionary) Entries() []Entry {
	runes := make([]rune, 0, len(d.entries))
	for r := range d.entries {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	out := make([]Entry, len(runes))
	for i, r := range runes {
		out[i] = Entry{
			Character: string(r),
			Readings:  append([]string(nil), d.entries[r]...),
		}
	}
	return out
}

// Store publishes the current dictionary revision. Readers take a Snapshot
// and use it for a whole operation, so a concurrent Swap never exposes a
// half-loaded table.
type Store struct {
	current atomic.Pointer[Dictionary]
}

// NewStore creates a store serving d.
func NewStore(d *Dictionary) *Store {
	s := &Store{}
	if d == nil {
		d = Empty()
	}
	s.current.Store(d)
	return s
}

// Snapshot returns the dictionary revision in effect right now.
func (s *Store) Snapshot() *Dictionary {
	return s.current.Load()
}

// Swap installs d as the new revision and returns the previous one.
func (s *Store) Swap(d *Dictionary) *Dictionary {
	if d == nil {
		d = Empty()
	}
	return s.current.Swap(d)
}

func entryRune(char string) (rune, error) {
	if char == "" {
		return 0, fmt.Errorf("invalid entry found: character is required")
	}
	if utf8.RuneCountInString(char) != 1 {
		return 0, fmt.Errorf("invalid entry found: %q is not a single character", char)
	}
	r, _ := utf8.DecodeRuneInString(char)
	return r, nil
}

func cleanReadings(char string, readings []string) ([]string, error) {
	out := make([]string, 0, len(readings))
	for _, rd := range readings {
		if rd == "" {
			return nil, fmt.Errorf("invalid entry found: empty reading for %s", char)
		}
		out = append(out, rd)
	}
	return out, nil
}
