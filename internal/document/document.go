// Package document annotates whole files, choosing the HTML, Markdown or
// plain-text pipeline by format.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/f3rmion/furi/internal/dom"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/markdown"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/f3rmion/furi/internal/textenc"
)

// Format selects the annotation pipeline.
type Format string

const (
	HTML     Format = "html"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// OutputSuffix is inserted before the extension of generated files.
const OutputSuffix = ".furigana"

var (
	// ErrUnknownFormat is returned by ParseFormat for unknown names.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrRevertUnsupported is returned when reverting a format that does
	// not record the original text.
	ErrRevertUnsupported = errors.New("revert is only supported for html")
)

// ParseFormat converts a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "html", "htm", "xhtml":
		return HTML, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Detect picks a format from path's extension. Unknown extensions are
// treated as plain text.
func Detect(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return Text
}

// OutputPath returns where the annotated copy of src goes: outDir when set,
// otherwise beside src, named <base>.furigana<ext>.
func OutputPath(src, outDir string) string {
	dir := filepath.Dir(src)
	if outDir != "" {
		dir = outDir
	}
	ext := filepath.Ext(src)
	base := strings.TrimSuffix(filepath.Base(src), ext)
	return filepath.Join(dir, base+OutputSuffix+ext)
}

// Result describes one processed document.
type Result struct {
	Output []byte
	// Changed counts converted text nodes for HTML and ruby elements for
	// the other formats.
	Changed  int
	Encoding textenc.Encoding
}

// Processor annotates documents with one engine.
type Processor struct {
	engine   *furigana.Engine
	markdown *markdown.Annotator
	log      *slog.Logger
}

// NewProcessor creates a processor. A nil logger discards output.
func NewProcessor(engine *furigana.Engine, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{engine: engine, markdown: markdown.New(engine, log), log: log}
}

// Annotate converts UTF-8 content of the given format.
func (p *Processor) Annotate(content []byte, format Format, mode settings.Mode) (Result, error) {
	if !mode.Valid() {
		return Result{}, fmt.Errorf("%w: mode %q", furigana.ErrInvalidArgument, mode)
	}
	switch format {
	case HTML:
		var buf bytes.Buffer
		n, err := dom.AnnotateDocument(bytes.NewReader(content), &buf, p.engine, mode, p.log)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: buf.Bytes(), Changed: n}, nil
	case Markdown:
		out, err := p.markdown.Annotate(content, mode)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: out, Changed: bytes.Count(out, []byte("<ruby>"))}, nil
	case Text:
		if mode == settings.ModeOff {
			return Result{Output: bytes.Clone(content)}, nil
		}
		out := p.engine.Convert(string(content), mode)
		return Result{Output: []byte(out), Changed: strings.Count(out, "<ruby>")}, nil
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Revert restores the original text of an annotated HTML document.
func (p *Processor) Revert(content []byte, format Format) (Result, error) {
	if format != HTML {
		return Result{}, ErrRevertUnsupported
	}
	var buf bytes.Buffer
	n, err := dom.RevertDocument(bytes.NewReader(content), &buf)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: buf.Bytes(), Changed: n}, nil
}

// AnnotateFile reads src in enc, annotates it and writes dst in the
// encoding the input used.
func (p *Processor) AnnotateFile(src, dst string, format Format, mode settings.Mode, enc textenc.Encoding) (Result, error) {
	return p.rewriteFile(src, dst, enc, func(content []byte) (Result, error) {
		return p.Annotate(content, format, mode)
	})
}

// RevertFile restores an annotated HTML file.
func (p *Processor) RevertFile(src, dst string, enc textenc.Encoding) (Result, error) {
	return p.rewriteFile(src, dst, enc, func(content []byte) (Result, error) {
		return p.Revert(content, HTML)
	})
}

func (p *Processor) rewriteFile(src, dst string, enc textenc.Encoding, fn func([]byte) (Result, error)) (Result, error) {
	raw, err := os.ReadFile(src)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", src, err)
	}
	text, used, err := textenc.Decode(raw, enc)
	if err != nil {
		return Result{}, err
	}

	res, err := fn([]byte(text))
	if err != nil {
		return Result{}, fmt.Errorf("processing %s: %w", src, err)
	}
	res.Encoding = used

	out, err := textenc.Encode(string(res.Output), used)
	if err != nil {
		return Result{}, err
	}
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Result{}, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(dst, out, 0644); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", dst, err)
	}
	p.log.Debug("document written", "src", src, "dst", dst, "changed", res.Changed, "encoding", used)
	return res, nil
}
