package furigana

import (
	"html"
	"log/slog"

	"github.com/f3rmion/furi/internal/kana"
	"github.com/f3rmion/furi/internal/reading"
	"github.com/f3rmion/furi/internal/settings"
)

// Engine ties the matcher, segmenter, annotator and renderer to a dictionary
// store. Each call works against a single dictionary snapshot.
type Engine struct {
	store    *reading.Store
	matcher  *Matcher
	renderer *Renderer
	log      *slog.Logger
}

// NewEngine creates an engine. A nil matcher uses the permissive pattern
// (hiragana or katakana readings); a nil logger discards output.
func NewEngine(store *reading.Store, matcher *Matcher, log *slog.Logger) *Engine {
	if store == nil {
		store = reading.NewStore(nil)
	}
	if matcher == nil {
		matcher = NewMatcher(true)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		store:    store,
		matcher:  matcher,
		renderer: NewRenderer(),
		log:      log,
	}
}

// Store returns the dictionary store the engine reads from.
func (e *Engine) Store() *reading.Store {
	return e.store
}

// Matcher returns the bracket matcher.
func (e *Engine) Matcher() *Matcher {
	return e.matcher
}

// Renderer returns the markup renderer.
func (e *Engine) Renderer() *Renderer {
	return e.renderer
}

// HasBracketPattern reports whether text holds a bracketed reading.
func (e *Engine) HasBracketPattern(text string) bool {
	return e.matcher.HasMatch(text)
}

// HasKanji reports whether text holds any kanji.
func (e *Engine) HasKanji(text string) bool {
	return kana.HasKanji(text)
}

// Segment splits surface across run using the current dictionary.
func (e *Engine) Segment(run, surface string) (Segmentation, error) {
	return NewSegmenter(e.store.Snapshot()).Segment(run, surface)
}

// ConvertBracket replaces every bracket pattern in text with per-character
// ruby. A run the segmenter rejects is annotated as a whole.
func (e *Engine) ConvertBracket(text string) string {
	return e.matcher.Convert(text, e.MatchRenderer())
}

// MatchRenderer returns a function that renders single matches against the
// current dictionary snapshot.
func (e *Engine) MatchRenderer() func(Match) string {
	seg := NewSegmenter(e.store.Snapshot())
	return func(m Match) string {
		s, err := seg.Segment(m.Run, m.Reading)
		if err != nil {
			e.log.Debug("segmentation rejected, annotating whole run",
				"run", m.Run, "reading", m.Reading, "error", err)
			return e.renderer.RenderWhole(m.Run, m.Reading)
		}
		return e.renderer.Render(s)
	}
}

// ConvertAuto annotates every known kanji in text with its first reading.
func (e *Engine) ConvertAuto(text string) string {
	return e.Annotator().Annotate(text)
}

// Annotator returns an auto-annotator over the current dictionary snapshot.
func (e *Engine) Annotator() *Annotator {
	return NewAnnotator(e.store.Snapshot(), e.renderer)
}

// Convert annotates text according to mode and returns markup. ModeOff, like
// any unknown mode, adds no ruby but still escapes text, so the result can be
// embedded the same way in every mode.
func (e *Engine) Convert(text string, mode settings.Mode) string {
	switch mode {
	case settings.ModeBracket:
		return e.ConvertBracket(text)
	case settings.ModeAuto:
		return e.ConvertAuto(text)
	}
	return html.EscapeString(text)
}

// Applies reports whether Convert would change anything in text under mode.
func (e *Engine) Applies(text string, mode settings.Mode) bool {
	switch mode {
	case settings.ModeBracket:
		return e.HasBracketPattern(text)
	case settings.ModeAuto:
		return e.HasKanji(text)
	}
	return false
}
