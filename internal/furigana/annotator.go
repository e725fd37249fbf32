package furigana

import (
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/furi/internal/kana"
	"golang.org/x/net/html"
)

// Annotator adds a reading to every known kanji using only the first
// dictionary candidate. It never looks at brackets.
type Annotator struct {
	dict     Lookup
	renderer *Renderer
}

// NewAnnotator creates an annotator backed by dict.
func NewAnnotator(dict Lookup, renderer *Renderer) *Annotator {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Annotator{dict: dict, renderer: renderer}
}

// Annotate returns text as markup with each known kanji wrapped in ruby.
// Kanji without an entry and all other characters are copied through,
// HTML-escaped.
func (a *Annotator) Annotate(text string) string {
	var b strings.Builder
	start := 0
	for i, r := range text {
		markup, ok := a.RenderRune(r)
		if !ok {
			continue
		}
		b.WriteString(html.EscapeString(text[start:i]))
		b.WriteString(markup)
		start = i + utf8.RuneLen(r)
	}
	b.WriteString(html.EscapeString(text[start:]))
	return b.String()
}

// RenderRune returns the ruby markup for a single kanji, or false when it
// has no usable entry.
func (a *Annotator) RenderRune(r rune) (string, bool) {
	if !kana.IsKanji(r) {
		return "", false
	}
	reading, ok := a.first(r)
	if !ok {
		return "", false
	}
	return a.renderer.Render(Segmentation{{Char: r, Reading: reading}}), true
}

func (a *Annotator) first(r rune) (string, bool) {
	if a.dict == nil {
		return "", false
	}
	readings, ok := a.dict.Lookup(r)
	if !ok || len(readings) == 0 {
		return "", false
	}
	return readings[0], true
}
