package anki

import (
	"archive/zip"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/f3rmion/furi/internal/dom"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Stats counts what an annotation pass changed.
type Stats struct {
	Notes  int
	Fields int
}

// Annotate rewrites note fields with furigana. When fields is empty every
// field of every note is processed; otherwise only fields with those names.
func (p *Package) Annotate(engine *furigana.Engine, mode settings.Mode, fields []string) (Stats, error) {
	return p.rewrite(fields, func(value string) (string, error) {
		return dom.AnnotateFragment(value, engine, mode)
	})
}

// Revert strips annotations previously added by Annotate.
func (p *Package) Revert(fields []string) (Stats, error) {
	return p.rewrite(fields, dom.RevertFragment)
}

func (p *Package) rewrite(fields []string, fn func(string) (string, error)) (Stats, error) {
	var st Stats
	for _, n := range p.Notes {
		changed := false
		for _, i := range p.targetFields(n, fields) {
			out, err := fn(n.Fields[i])
			if err != nil {
				return st, fmt.Errorf("note %d field %d: %w", n.ID, i, err)
			}
			if out == n.Fields[i] {
				continue
			}
			p.SetField(n, i, out)
			st.Fields++
			changed = true
		}
		if changed {
			st.Notes++
		}
	}
	return st, nil
}

func (p *Package) targetFields(n *Note, names []string) []int {
	if len(names) == 0 {
		all := make([]int, len(n.Fields))
		for i := range all {
			all[i] = i
		}
		return all
	}
	var idx []int
	for _, name := range names {
		if i, ok := p.FieldIndex(n, name); ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// SetField replaces field i of n and refreshes its sort field and checksum.
func (p *Package) SetField(n *Note, i int, value string) {
	for len(n.Fields) <= i {
		n.Fields = append(n.Fields, "")
	}
	n.Fields[i] = value
	if i == 0 {
		n.SFLD = PlainText(value)
		n.CSum = Checksum(n.SFLD)
	}
	n.Mod = time.Now().Unix()
	n.dirty = true
}

// Checksum is Anki's duplicate check value: the first 8 hex digits of the
// SHA-1 of the first field's plain text.
func Checksum(plain string) int64 {
	sum := sha1.Sum([]byte(plain))
	csum, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return csum
}

// PlainText strips markup from a field. Converted spans contribute their
// original text and other ruby readings are dropped, so an annotated field
// sorts and deduplicates like the text it was made from.
func PlainText(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
	if err != nil {
		return fragment
	}

	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.DataAtom == atom.Rt || n.DataAtom == atom.Rp):
			return
		case dom.IsConverted(n):
			if original, ok := dom.Original(n); ok {
				b.WriteString(original)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return b.String()
}

// SaveAs writes the package, including any modified notes, to a new .apkg.
func (p *Package) SaveAs(outputPath string) error {
	if err := p.updateNotes(); err != nil {
		return fmt.Errorf("updating database: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	zw := zip.NewWriter(outFile)
	err = filepath.Walk(p.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(p.tempDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("creating zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing zip: %w", err)
	}
	return outFile.Close()
}

// updateNotes writes modified notes back in one transaction.
func (p *Package) updateNotes() error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE notes SET mod = ?, usn = -1, flds = ?, sfld = ?, csum = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("preparing note update: %w", err)
	}
	defer stmt.Close()

	for _, n := range p.Notes {
		if !n.dirty {
			continue
		}
		if _, err := stmt.Exec(n.Mod, strings.Join(n.Fields, fieldSep), n.SFLD, n.CSum, n.ID); err != nil {
			return fmt.Errorf("updating note %d: %w", n.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing notes: %w", err)
	}

	for _, n := range p.Notes {
		n.dirty = false
	}
	return nil
}
