package furigana

import (
	"strings"

	"golang.org/x/net/html"
)

// Renderer turns segmentations into ruby markup. Each annotation carries
// <rp> parentheses so renderers without ruby support show "漢(かん)".
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render emits one ruby element per pair, in order.
func (r *Renderer) Render(seg Segmentation) string {
	var b strings.Builder
	for _, p := range seg {
		r.write(&b, string(p.Char), p.Reading)
	}
	return b.String()
}

// RenderWhole emits a single ruby element spanning the whole run.
func (r *Renderer) RenderWhole(run, reading string) string {
	var b strings.Builder
	r.write(&b, run, reading)
	return b.String()
}

func (r *Renderer) write(b *strings.Builder, base, reading string) {
	b.WriteString("<ruby>")
	b.WriteString(html.EscapeString(base))
	b.WriteString("<rp>(</rp><rt>")
	b.WriteString(html.EscapeString(reading))
	b.WriteString("</rt><rp>)</rp></ruby>")
}
