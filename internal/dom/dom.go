// Package dom applies furigana annotation to parsed HTML trees. It finds
// eligible text nodes, swaps them for annotated spans, and reverts them.
package dom

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ConvertedClass marks spans produced by the adapter.
	ConvertedClass = "furigana-converted"
	// OriginalAttr holds the exact text a span replaced.
	OriginalAttr = "data-original"
)

// Text under these elements is never annotated.
var skipTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Textarea: true,
	atom.Input:    true,
	atom.Ruby:     true,
	atom.Rt:       true,
	atom.Rp:       true,
}

// Adapter owns the annotation state of one document: the current mode and
// the set of spans it has inserted.
type Adapter struct {
	engine    *furigana.Engine
	mode      settings.Mode
	processed map[*html.Node]struct{}
	log       *slog.Logger
}

// NewAdapter creates an adapter that annotates in mode.
func NewAdapter(engine *furigana.Engine, mode settings.Mode, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		engine:    engine,
		mode:      mode,
		processed: make(map[*html.Node]struct{}),
		log:       log,
	}
}

// Mode returns the current mode.
func (a *Adapter) Mode() settings.Mode {
	return a.mode
}

// Processed returns how many spans the adapter currently owns.
func (a *Adapter) Processed() int {
	return len(a.processed)
}

// Owns reports whether n is a span this adapter inserted.
func (a *Adapter) Owns(n *html.Node) bool {
	_, ok := a.processed[n]
	return ok
}

// Apply annotates every eligible text node under root and returns the
// number of nodes replaced. Already converted spans are left alone, so
// calling Apply repeatedly is safe.
func (a *Adapter) Apply(root *html.Node) (int, error) {
	if a.mode == settings.ModeOff || root == nil {
		return 0, nil
	}

	var targets []*html.Node
	collectText(root, func(n *html.Node) {
		if a.engine.Applies(n.Data, a.mode) {
			targets = append(targets, n)
		}
	})

	for _, n := range targets {
		span, err := a.replace(n)
		if err != nil {
			return 0, err
		}
		a.processed[span] = struct{}{}
	}

	if len(targets) > 0 {
		a.log.Debug("annotated text nodes", "count", len(targets), "mode", a.mode)
	}
	return len(targets), nil
}

// Revert restores the original text of every converted span under root and
// forgets those spans. Spans without a data-original value are left in
// place. It returns the number of spans removed.
func (a *Adapter) Revert(root *html.Node) int {
	var spans []*html.Node
	walk(root, func(n *html.Node) bool {
		if IsConverted(n) {
			spans = append(spans, n)
			return false
		}
		return true
	})

	reverted := 0
	for _, span := range spans {
		original, ok := Original(span)
		if !ok {
			continue
		}
		text := &html.Node{Type: html.TextNode, Data: original}
		span.Parent.InsertBefore(text, span)
		span.Parent.RemoveChild(span)
		delete(a.processed, span)
		reverted++
	}
	return reverted
}

// SetMode switches to mode and re-annotates root from its original text.
// Switching to ModeOff only reverts.
func (a *Adapter) SetMode(root *html.Node, mode settings.Mode) (int, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("setting mode: %w: %q", furigana.ErrInvalidArgument, mode)
	}
	a.Revert(root)
	a.mode = mode
	return a.Apply(root)
}

func (a *Adapter) replace(n *html.Node) (*html.Node, error) {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: ConvertedClass},
			{Key: OriginalAttr, Val: n.Data},
		},
	}

	markup := a.engine.Convert(n.Data, a.mode)
	children, err := html.ParseFragment(strings.NewReader(markup), span)
	if err != nil {
		return nil, fmt.Errorf("parsing annotated markup: %w", err)
	}
	for _, c := range children {
		span.AppendChild(c)
	}

	n.Parent.InsertBefore(span, n)
	n.Parent.RemoveChild(n)
	return span, nil
}

// collectText calls fn for every text node that is not inside a skipped
// element or an already converted span.
func collectText(root *html.Node, fn func(*html.Node)) {
	walk(root, func(n *html.Node) bool {
		switch n.Type {
		case html.ElementNode:
			return !skipTags[n.DataAtom] && !IsConverted(n)
		case html.TextNode:
			if n.Parent != nil {
				fn(n)
			}
			return false
		}
		return true
	})
}

// walk visits n and its descendants in document order. Children are skipped
// when visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// IsConverted reports whether n is a span created by the adapter.
func IsConverted(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Span {
		return false
	}
	class, _ := attr(n, "class")
	return slices.Contains(strings.Fields(class), ConvertedClass)
}

// Original returns the text a converted span was created from. It reports
// false when n carries no non-empty data-original attribute.
func Original(n *html.Node) (string, bool) {
	original, ok := attr(n, OriginalAttr)
	return original, ok && original != ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AnnotateDocument parses a full HTML document from r, annotates it in mode
// and writes the result to w.
func AnnotateDocument(r io.Reader, w io.Writer, engine *furigana.Engine, mode settings.Mode, log *slog.Logger) (int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}
	n, err := NewAdapter(engine, mode, log).Apply(doc)
	if err != nil {
		return 0, err
	}
	if err := html.Render(w, doc); err != nil {
		return 0, fmt.Errorf("rendering html: %w", err)
	}
	return n, nil
}

// RevertDocument parses a document from r, restores every converted span
// and writes the result to w.
func RevertDocument(r io.Reader, w io.Writer) (int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}
	n := NewAdapter(nil, settings.ModeOff, nil).Revert(doc)
	if err := html.Render(w, doc); err != nil {
		return 0, fmt.Errorf("rendering html: %w", err)
	}
	return n, nil
}

// AnnotateFragment annotates an HTML fragment such as a note field and
// returns the rendered fragment.
func AnnotateFragment(fragment string, engine *furigana.Engine, mode settings.Mode) (string, error) {
	container, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	if _, err := NewAdapter(engine, mode, nil).Apply(container); err != nil {
		return "", err
	}
	return renderChildren(container)
}

// RevertFragment restores every converted span in an HTML fragment.
func RevertFragment(fragment string) (string, error) {
	container, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	NewAdapter(nil, settings.ModeOff, nil).Revert(container)
	return renderChildren(container)
}

func parseFragment(fragment string) (*html.Node, error) {
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return nil, fmt.Errorf("parsing html fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

func renderChildren(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("rendering html fragment: %w", err)
		}
	}
	return b.String(), nil
}
