// Package settings handles loading and saving the user's annotation mode.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how text is annotated.
type Mode string

const (
	// ModeOff leaves text untouched.
	ModeOff Mode = "off"
	// ModeBracket converts only explicit "漢字(かんじ)" patterns.
	ModeBracket Mode = "bracket"
	// ModeAuto annotates every known kanji from the dictionary.
	ModeAuto Mode = "auto"
)

// Modes lists every mode in cycling order.
var Modes = []Mode{ModeOff, ModeBracket, ModeAuto}

// DefaultMode is used when nothing has been stored yet.
const DefaultMode = ModeBracket

// DefaultHotkey cycles the mode from the settings panel.
const DefaultHotkey = "ctrl+shift+f"

// FileName is the settings file inside the config directory.
const FileName = "settings.yaml"

var statusText = map[Mode]string{
	ModeOff:     "✗ Off",
	ModeBracket: "✓ Bracket annotation",
	ModeAuto:    "✓ Automatic annotation",
}

// ParseMode converts a string to a Mode. Matching ignores case and
// surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want off, bracket or auto)", s)
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeOff, ModeBracket, ModeAuto:
		return true
	}
	return false
}

// Next returns the mode after m in cycling order.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return DefaultMode
}

// Status returns the short status line shown for m.
func (m Mode) Status() string {
	if s, ok := statusText[m]; ok {
		return s
	}
	return string(m)
}

func (m Mode) String() string {
	return string(m)
}

// Settings holds the persisted user preferences.
type Settings struct {
	Mode   Mode   `yaml:"mode"`
	Hotkey string `yaml:"hotkey"`
}

// Default returns the settings used before anything is saved.
func Default() Settings {
	return Settings{Mode: DefaultMode, Hotkey: DefaultHotkey}
}

// normalize fills missing fields with defaults.
func (s Settings) normalize() Settings {
	if !s.Mode.Valid() {
		s.Mode = DefaultMode
	}
	if s.Hotkey == "" {
		s.Hotkey = DefaultHotkey
	}
	return s
}

// Store persists Settings as YAML in a single file.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore creates a store for <dir>/settings.yaml.
func NewStore(dir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{path: filepath.Join(dir, FileName), log: log}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Read loads the settings file. A missing file yields the defaults with no
// error; an unreadable or malformed file is reported.
func (s *Store) Read() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading settings file: %w", err)
	}

	var st Settings
	if err := yaml.Unmarshal(data, &st); err != nil {
		return Default(), fmt.Errorf("parsing settings file: %w", err)
	}
	if st.Mode != "" && !st.Mode.Valid() {
		return Default(), fmt.Errorf("parsing settings file: unknown mode %q", st.Mode)
	}
	return st.normalize(), nil
}

// Load is Read that never fails: any error is logged and the defaults are
// returned, so a broken settings file never blocks annotation.
func (s *Store) Load() Settings {
	st, err := s.Read()
	if err != nil {
		s.log.Warn("using default settings", "path", s.path, "error", err)
		return Default()
	}
	return st
}

// Save writes st to the settings file, creating the directory if needed.
func (s *Store) Save(st Settings) error {
	if !st.Mode.Valid() {
		return fmt.Errorf("saving settings: unknown mode %q", st.Mode)
	}
	st = st.normalize()

	out, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
