// Package anki reads Anki .apkg decks and writes annotated copies.
package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// fieldSep separates note fields inside notes.flds.
const fieldSep = "\x1f"

// Package is an extracted .apkg file.
type Package struct {
	path    string
	tempDir string
	db      *sql.DB
	Models  map[int64]*Model
	Decks   map[int64]*Deck
	Notes   []*Note
	Cards   int
}

// Model is an Anki note type.
type Model struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"flds"`
	Type   int     `json:"type"` // 0 = standard, 1 = cloze
}

// Field is one field definition of a note type.
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Deck is an Anki deck.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Note is one Anki note. Fields are split from the raw flds column.
type Note struct {
	ID      int64
	GUID    string
	ModelID int64
	Mod     int64
	Tags    string
	Fields  []string
	SFLD    string
	CSum    int64

	dirty bool
}

// Open extracts an .apkg file to a temporary directory and loads its
// collection. Call Close to remove the temporary files.
func Open(path string) (*Package, error) {
	pkg := &Package{
		path:   path,
		Models: make(map[int64]*Model),
		Decks:  make(map[int64]*Deck),
	}

	tempDir, err := os.MkdirTemp("", "furi-anki-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	pkg.tempDir = tempDir

	if err := pkg.extract(); err != nil {
		pkg.Close()
		return nil, err
	}

	dbPath, err := pkg.collectionPath()
	if err != nil {
		pkg.Close()
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		pkg.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	pkg.db = db

	for _, load := range []func() error{pkg.loadCollection, pkg.loadNotes, pkg.countCards} {
		if err := load(); err != nil {
			pkg.Close()
			return nil, err
		}
	}
	return pkg, nil
}

// collectionPath prefers the newer collection.anki21 when both exist.
func (p *Package) collectionPath() (string, error) {
	for _, name := range []string{"collection.anki21", "collection.anki2"} {
		path := filepath.Join(p.tempDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no collection database in package")
}

func (p *Package) extract() error {
	r, err := zip.OpenReader(p.path)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(p.tempDir, f.Name)

		// Prevent zip slip
		if !strings.HasPrefix(fpath, filepath.Clean(p.tempDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, fpath); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}

// loadCollection reads note types and decks from the col table.
func (p *Package) loadCollection() error {
	var models, decks string
	if err := p.db.QueryRow("SELECT models, decks FROM col").Scan(&models, &decks); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	var modelsMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &modelsMap); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}
	for _, raw := range modelsMap {
		var m Model
		if err := json.Unmarshal(raw, &m); err != nil {
			continue // Skip malformed models
		}
		p.Models[m.ID] = &m
	}

	var decksMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(decks), &decksMap); err != nil {
		return fmt.Errorf("parsing decks: %w", err)
	}
	for _, raw := range decksMap {
		var d Deck
		if err := json.Unmarshal(raw, &d); err != nil {
			continue // Skip malformed decks
		}
		p.Decks[d.ID] = &d
	}
	return nil
}

func (p *Package) loadNotes() error {
	rows, err := p.db.Query(`SELECT id, guid, mid, mod, tags, flds, sfld, csum FROM notes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n Note
		var flds string
		if err := rows.Scan(&n.ID, &n.GUID, &n.ModelID, &n.Mod, &n.Tags, &flds, &n.SFLD, &n.CSum); err != nil {
			return fmt.Errorf("scanning note: %w", err)
		}
		n.Fields = strings.Split(flds, fieldSep)
		p.Notes = append(p.Notes, &n)
	}
	return rows.Err()
}

func (p *Package) countCards() error {
	if err := p.db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&p.Cards); err != nil {
		return fmt.Errorf("counting cards: %w", err)
	}
	return nil
}

// Model returns the note type of n, or nil if the collection lacks it.
func (p *Package) Model(n *Note) *Model {
	return p.Models[n.ModelID]
}

// FieldNames returns the field names of n's note type in order.
func (p *Package) FieldNames(n *Note) []string {
	m := p.Model(n)
	if m == nil {
		return nil
	}
	fields := append([]Field(nil), m.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Ord < fields[j].Ord })

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the position of the named field in n.Fields. Names
// match case-insensitively.
func (p *Package) FieldIndex(n *Note, name string) (int, bool) {
	m := p.Model(n)
	if m == nil {
		return 0, false
	}
	for _, f := range m.Fields {
		if strings.EqualFold(f.Name, name) && f.Ord < len(n.Fields) {
			return f.Ord, true
		}
	}
	return 0, false
}

// FieldValue returns the named field of n, or "" if it does not exist.
func (p *Package) FieldValue(n *Note, name string) string {
	if i, ok := p.FieldIndex(n, name); ok {
		return n.Fields[i]
	}
	return ""
}

// Close releases the database and removes the extracted files.
func (p *Package) Close() error {
	var errs []error
	if p.db != nil {
		errs = append(errs, p.db.Close())
	}
	if p.tempDir != "" {
		if err := os.RemoveAll(p.tempDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Summary describes the package contents for display.
func (p *Package) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Anki Package: %s\n", p.path)
	fmt.Fprintf(&sb, "  Decks: %d\n", len(p.Decks))
	for _, name := range sortedNames(p.Decks, func(d *Deck) string { return d.Name }) {
		fmt.Fprintf(&sb, "    - %s\n", name)
	}
	fmt.Fprintf(&sb, "  Note types: %d\n", len(p.Models))
	for _, id := range sortedIDs(p.Models) {
		m := p.Models[id]
		fmt.Fprintf(&sb, "    - %s (%d fields)\n", m.Name, len(m.Fields))
	}
	fmt.Fprintf(&sb, "  Notes: %d\n", len(p.Notes))
	fmt.Fprintf(&sb, "  Cards: %d\n", p.Cards)

	return sb.String()
}

func sortedNames[T any](m map[int64]T, name func(T) string) []string {
	names := make([]string, 0, len(m))
	for _, v := range m {
		names = append(names, name(v))
	}
	sort.Strings(names)
	return names
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
