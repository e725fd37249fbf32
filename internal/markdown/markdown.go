// Package markdown adds furigana to Markdown source. Only prose is touched:
// code, raw HTML and link destinations are left as written.
package markdown

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// span is a byte range of prose in the source.
type span struct {
	start, end int
}

// Annotator rewrites Markdown documents.
type Annotator struct {
	engine *furigana.Engine
	md     goldmark.Markdown
	log    *slog.Logger
}

// New creates a Markdown annotator.
func New(engine *furigana.Engine, log *slog.Logger) *Annotator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Annotator{engine: engine, md: goldmark.New(), log: log}
}

// Annotate returns content with ruby markup inserted according to mode.
func (a *Annotator) Annotate(content []byte, mode settings.Mode) ([]byte, error) {
	patches, err := a.Patches(content, mode)
	if err != nil {
		return nil, err
	}
	return ApplyPatches(content, patches)
}

// Patches returns the edits Annotate would make, in source order.
func (a *Annotator) Patches(content []byte, mode settings.Mode) ([]Patch, error) {
	if mode == settings.ModeOff {
		return nil, nil
	}

	spans, err := a.prose(content)
	if err != nil {
		return nil, err
	}

	var patches []Patch
	switch mode {
	case settings.ModeBracket:
		render := a.engine.MatchRenderer()
		for _, s := range spans {
			for m := range a.engine.Matcher().All(string(content[s.start:s.end])) {
				patches = append(patches, Patch{
					Start:   s.start + m.Start,
					End:     s.start + m.End,
					NewText: []byte(render(m)),
				})
			}
		}
	case settings.ModeAuto:
		ann := a.engine.Annotator()
		for _, s := range spans {
			for i, r := range string(content[s.start:s.end]) {
				if markup, ok := ann.RenderRune(r); ok {
					start := s.start + i
					patches = append(patches, Patch{
						Start:   start,
						End:     start + utf8.RuneLen(r),
						NewText: []byte(markup),
					})
				}
			}
		}
	default:
		return nil, fmt.Errorf("annotating markdown: %w: mode %q", furigana.ErrInvalidArgument, mode)
	}

	a.log.Debug("markdown patches", "count", len(patches), "mode", mode)
	return patches, nil
}

// prose collects the text ranges of the document that may be annotated.
// Adjacent text nodes are merged so a pattern split by the parser is still
// found.
func (a *Annotator) prose(content []byte) ([]span, error) {
	doc := a.md.Parser().Parse(text.NewReader(content))

	var spans []span
	walker := func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML:
			return ast.WalkSkipChildren, nil
		case ast.KindCodeSpan, ast.KindAutoLink, ast.KindImage:
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			seg := n.(*ast.Text).Segment
			if seg.Len() == 0 {
				return ast.WalkContinue, nil
			}
			if last := len(spans) - 1; last >= 0 && spans[last].end == seg.Start {
				spans[last].end = seg.Stop
			} else {
				spans = append(spans, span{start: seg.Start, end: seg.Stop})
			}
		}
		return ast.WalkContinue, nil
	}

	if err := ast.Walk(doc, walker); err != nil {
		return nil, fmt.Errorf("walking markdown: %w", err)
	}
	return spans, nil
}
