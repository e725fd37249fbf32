package dom

import (
	"strings"
	"testing"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/reading"
	"github.com/f3rmion/furi/internal/settings"
	"golang.org/x/net/html"
)

const ekiRuby = "<ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>"

func testEngine() *furigana.Engine {
	dict := reading.New(map[rune][]string{
		'駅': {"えき"},
		'校': {"こう"},
		'庭': {"てい"},
	})
	return furigana.NewEngine(reading.NewStore(dict), nil, nil)
}

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parsing html: %v", err)
	}
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		t.Fatalf("rendering html: %v", err)
	}
	return b.String()
}

func TestApplyBracket(t *testing.T) {
	doc := parse(t, "<p>駅(えき)です</p><script>var s = '駅(えき)';</script><textarea>駅(えき)</textarea>")
	a := NewAdapter(testEngine(), settings.ModeBracket, nil)

	n, err := a.Apply(doc)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Apply() = %d, want 1", n)
	}

	got := render(t, doc)
	want := `<p><span class="furigana-converted" data-original="駅(えき)です">` + ekiRuby + `です</span></p>`
	if !strings.Contains(got, want) {
		t.Errorf("rendered document missing annotated span:\n%s", got)
	}
	if !strings.Contains(got, "<script>var s = '駅(えき)';</script>") {
		t.Errorf("script content was touched:\n%s", got)
	}
	if !strings.Contains(got, "<textarea>駅(えき)</textarea>") {
		t.Errorf("textarea content was touched:\n%s", got)
	}
}

func TestApplySkipsExistingRuby(t *testing.T) {
	src := "<p><ruby>駅<rt>えき</rt></ruby></p>"
	doc := parse(t, src)
	before := render(t, doc)

	n, err := NewAdapter(testEngine(), settings.ModeAuto, nil).Apply(doc)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Apply() = %d, want 0", n)
	}
	if got := render(t, doc); got != before {
		t.Errorf("document changed:\n%s", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	doc := parse(t, "<div>駅(えき)<b>校庭(こうてい)</b></div>")
	a := NewAdapter(testEngine(), settings.ModeBracket, nil)

	first, err := a.Apply(doc)
	if err != nil {
		t.Fatal(err)
	}
	if first != 2 {
		t.Fatalf("first Apply() = %d, want 2", first)
	}
	once := render(t, doc)

	second, err := a.Apply(doc)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Errorf("second Apply() = %d, want 0", second)
	}
	if got := render(t, doc); got != once {
		t.Errorf("second pass changed document:\n%s", got)
	}
}

func TestModeOffDoesNothing(t *testing.T) {
	doc := parse(t, "<p>駅(えき)</p>")
	before := render(t, doc)
	a := NewAdapter(testEngine(), settings.ModeOff, nil)
	if n, _ := a.Apply(doc); n != 0 {
		t.Errorf("Apply() = %d, want 0", n)
	}
	if got := render(t, doc); got != before {
		t.Errorf("document changed:\n%s", got)
	}
}

func TestRevertRestoresOriginal(t *testing.T) {
	src := "<p>前 駅(えき) &amp; 後</p><p>校庭（こうてい）</p>"
	doc := parse(t, src)
	original := render(t, doc)

	a := NewAdapter(testEngine(), settings.ModeBracket, nil)
	if _, err := a.Apply(doc); err != nil {
		t.Fatal(err)
	}
	if a.Processed() != 2 {
		t.Errorf("Processed() = %d, want 2", a.Processed())
	}

	if n := a.Revert(doc); n != 2 {
		t.Errorf("Revert() = %d, want 2", n)
	}
	if a.Processed() != 0 {
		t.Errorf("Processed() after revert = %d, want 0", a.Processed())
	}
	if got := render(t, doc); got != original {
		t.Errorf("revert mismatch:\n got %s\nwant %s", got, original)
	}
}

func TestRevertKeepsSpansWithoutOriginal(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing attribute", `<p><span class="furigana-converted">keep me</span></p>`},
		{"empty attribute", `<p><span class="furigana-converted" data-original="">keep me</span></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.src)
			want := render(t, doc)

			a := NewAdapter(testEngine(), settings.ModeBracket, nil)
			if n := a.Revert(doc); n != 0 {
				t.Errorf("Revert() = %d, want 0", n)
			}
			if got := render(t, doc); got != want {
				t.Errorf("span changed:\n got %s\nwant %s", got, want)
			}
		})
	}

	out, err := RevertFragment(`<span class="furigana-converted">keep me</span> 駅`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "keep me") {
		t.Errorf("RevertFragment dropped the span content: %q", out)
	}
}

func TestRevertThenReapplyIsByteIdentical(t *testing.T) {
	for _, mode := range []settings.Mode{settings.ModeBracket, settings.ModeAuto} {
		t.Run(string(mode), func(t *testing.T) {
			doc := parse(t, "<p>駅(えき)と校庭(こうてい)</p><ul><li>駅前</li></ul>")
			a := NewAdapter(testEngine(), mode, nil)

			if _, err := a.Apply(doc); err != nil {
				t.Fatal(err)
			}
			first := render(t, doc)

			a.Revert(doc)
			if _, err := a.Apply(doc); err != nil {
				t.Fatal(err)
			}
			if second := render(t, doc); second != first {
				t.Errorf("round trip mismatch:\nfirst  %s\nsecond %s", first, second)
			}
		})
	}
}

func TestSetMode(t *testing.T) {
	doc := parse(t, "<p>駅(えき)</p>")
	a := NewAdapter(testEngine(), settings.ModeBracket, nil)
	if _, err := a.Apply(doc); err != nil {
		t.Fatal(err)
	}

	if _, err := a.SetMode(doc, settings.ModeAuto); err != nil {
		t.Fatalf("SetMode() error: %v", err)
	}
	if a.Mode() != settings.ModeAuto {
		t.Errorf("Mode() = %q", a.Mode())
	}
	want := `data-original="駅(えき)">` + ekiRuby + `(えき)</span>`
	if got := render(t, doc); !strings.Contains(got, want) {
		t.Errorf("auto mode output unexpected:\n%s", got)
	}

	if _, err := a.SetMode(doc, settings.ModeOff); err != nil {
		t.Fatal(err)
	}
	if got := render(t, doc); strings.Contains(got, ConvertedClass) {
		t.Errorf("off mode left converted spans:\n%s", got)
	}

	if _, err := a.SetMode(doc, "loud"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestOwns(t *testing.T) {
	doc := parse(t, "<p>駅(えき)</p>")
	a := NewAdapter(testEngine(), settings.ModeBracket, nil)
	if _, err := a.Apply(doc); err != nil {
		t.Fatal(err)
	}

	var span *html.Node
	walk(doc, func(n *html.Node) bool {
		if IsConverted(n) {
			span = n
		}
		return true
	})
	if span == nil || !a.Owns(span) {
		t.Fatal("adapter does not own the span it inserted")
	}
	a.Revert(doc)
	if a.Owns(span) {
		t.Error("span still owned after revert")
	}
}

func TestAnnotateDocument(t *testing.T) {
	var out strings.Builder
	n, err := AnnotateDocument(strings.NewReader("<p>駅(えき)</p>"), &out, testEngine(), settings.ModeBracket, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || !strings.Contains(out.String(), ekiRuby) {
		t.Errorf("AnnotateDocument() = %d, %s", n, out.String())
	}

	var reverted strings.Builder
	if _, err := RevertDocument(strings.NewReader(out.String()), &reverted); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(reverted.String(), "<ruby>") {
		t.Errorf("RevertDocument left ruby markup: %s", reverted.String())
	}
}

func TestFragments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		mode  settings.Mode
		want  string
	}{
		{
			name:  "bracket field",
			input: "駅(えき)<br>end",
			mode:  settings.ModeBracket,
			want:  `<span class="furigana-converted" data-original="駅(えき)">` + ekiRuby + `</span><br/>end`,
		},
		{
			name:  "plain field",
			input: "hello <b>world</b>",
			mode:  settings.ModeAuto,
			want:  "hello <b>world</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AnnotateFragment(tt.input, testEngine(), tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("AnnotateFragment() = %q, want %q", got, tt.want)
			}

			back, err := RevertFragment(got)
			if err != nil {
				t.Fatal(err)
			}
			orig, _ := RevertFragment(tt.input)
			if back != orig {
				t.Errorf("RevertFragment() = %q, want %q", back, orig)
			}
		})
	}
}
