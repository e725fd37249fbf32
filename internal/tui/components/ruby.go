// Package components provides shared UI components for the TUI.
package components

import (
	"strings"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/kana"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/mattn/go-runewidth"
)

// Chunk is a piece of annotated text. Plain text has an empty Reading.
type Chunk struct {
	Base    string
	Reading string
}

// Chunks splits text the way the engine would annotate it under mode, one
// chunk per ruby element plus the plain text between them.
func Chunks(engine *furigana.Engine, text string, mode settings.Mode) []Chunk {
	var out []Chunk
	plain := func(s string) {
		if s == "" {
			return
		}
		if n := len(out); n > 0 && out[n-1].Reading == "" {
			out[n-1].Base += s
			return
		}
		out = append(out, Chunk{Base: s})
	}

	switch mode {
	case settings.ModeBracket:
		last := 0
		for m := range engine.Matcher().All(text) {
			plain(text[last:m.Start])
			seg, err := engine.Segment(m.Run, m.Reading)
			if err != nil {
				out = append(out, Chunk{Base: m.Run, Reading: m.Reading})
			} else {
				for _, p := range seg {
					out = append(out, Chunk{Base: string(p.Char), Reading: p.Reading})
				}
			}
			last = m.End
		}
		plain(text[last:])
	case settings.ModeAuto:
		dict := engine.Store().Snapshot()
		for _, r := range text {
			if kana.IsKanji(r) {
				if rd, ok := dict.First(r); ok {
					out = append(out, Chunk{Base: string(r), Reading: rd})
					continue
				}
			}
			plain(string(r))
		}
	default:
		plain(text)
	}
	return out
}

// RubyLines lays chunks out as pairs of terminal lines, readings above their
// bases. A width of zero or less disables wrapping.
func RubyLines(chunks []Chunk, width int) string {
	var rows []string
	var top, bottom strings.Builder
	lineWidth := 0

	flush := func() {
		rows = append(rows, strings.TrimRight(top.String(), " "), strings.TrimRight(bottom.String(), " "))
		top.Reset()
		bottom.Reset()
		lineWidth = 0
	}
	cell := func(base, reading string) {
		w := max(runewidth.StringWidth(base), runewidth.StringWidth(reading))
		if width > 0 && lineWidth > 0 && lineWidth+w > width {
			flush()
		}
		top.WriteString(center(reading, w))
		bottom.WriteString(center(base, w))
		lineWidth += w
	}

	for _, c := range chunks {
		if c.Reading != "" {
			cell(c.Base, c.Reading)
			continue
		}
		for _, r := range c.Base {
			cell(string(r), "")
		}
	}
	if lineWidth > 0 {
		flush()
	}
	return strings.Join(rows, "\n")
}

func center(s string, w int) string {
	pad := w - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// Wrap breaks s into lines no wider than width terminal cells. Existing
// newlines are kept.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	lineWidth := 0
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			lineWidth = 0
			continue
		}
		w := runewidth.RuneWidth(r)
		if lineWidth > 0 && lineWidth+w > width {
			b.WriteRune('\n')
			lineWidth = 0
		}
		b.WriteRune(r)
		lineWidth += w
	}
	return b.String()
}

// PadRight fills s with spaces to w terminal cells.
func PadRight(s string, w int) string {
	return runewidth.FillRight(s, w)
}
