package markdown

import (
	"errors"
	"testing"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/reading"
	"github.com/f3rmion/furi/internal/settings"
)

const (
	ekiRuby = "<ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>"
	kouRuby = "<ruby>校<rp>(</rp><rt>こう</rt><rp>)</rp></ruby>"
)

func testAnnotator() *Annotator {
	dict := reading.New(map[rune][]string{
		'駅': {"えき"},
		'校': {"こう"},
	})
	return New(furigana.NewEngine(reading.NewStore(dict), nil, nil), nil)
}

func TestAnnotateBracket(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic conversion",
			input: "駅(えき)に行く",
			want:  ekiRuby + "に行く",
		},
		{
			name:  "heading",
			input: "# 駅(えき)\n",
			want:  "# " + ekiRuby + "\n",
		},
		{
			name:  "emphasis",
			input: "*駅(えき)* です",
			want:  "*" + ekiRuby + "* です",
		},
		{
			name:  "code block ignored",
			input: "```\n駅(えき)\n```\nOutside: 駅(えき)",
			want:  "```\n駅(えき)\n```\nOutside: " + ekiRuby,
		},
		{
			name:  "inline code ignored",
			input: "This `駅(えき)` is code. Outside: 駅(えき)",
			want:  "This `駅(えき)` is code. Outside: " + ekiRuby,
		},
		{
			name:  "link text processed",
			input: "[駅(えき)](http://example.com/eki) 駅(えき)",
			want:  "[" + ekiRuby + "](http://example.com/eki) " + ekiRuby,
		},
		{
			name:  "html block ignored",
			input: "<div>駅(えき)</div>\n\nOutside: 駅(えき)",
			want:  "<div>駅(えき)</div>\n\nOutside: " + ekiRuby,
		},
		{
			name:  "text without pattern unchanged",
			input: "a & b < c",
			want:  "a & b < c",
		},
	}

	a := testAnnotator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Annotate([]byte(tt.input), settings.ModeBracket)
			if err != nil {
				t.Fatalf("Annotate() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Annotate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnnotateAuto(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "every known kanji",
			input: "駅と校",
			want:  ekiRuby + "と" + kouRuby,
		},
		{
			name:  "unknown kanji untouched",
			input: "猫の駅",
			want:  "猫の" + ekiRuby,
		},
		{
			name:  "inline code ignored",
			input: "`駅` 駅",
			want:  "`駅` " + ekiRuby,
		},
	}

	a := testAnnotator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Annotate([]byte(tt.input), settings.ModeAuto)
			if err != nil {
				t.Fatalf("Annotate() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Annotate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnnotateOff(t *testing.T) {
	input := []byte("駅(えき)")
	got, err := testAnnotator().Annotate(input, settings.ModeOff)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(input) {
		t.Errorf("Annotate() = %q, want input unchanged", got)
	}
}

func TestAnnotateUnknownMode(t *testing.T) {
	_, err := testAnnotator().Annotate([]byte("駅"), settings.Mode("loud"))
	if !errors.Is(err, furigana.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestPatchOffsets(t *testing.T) {
	src := []byte("前に駅(えき)")
	patches, err := testAnnotator().Patches(src, settings.ModeBracket)
	if err != nil {
		t.Fatal(err)
	}
	if len(patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(patches))
	}
	p := patches[0]
	if string(src[p.Start:p.End]) != "駅(えき)" {
		t.Errorf("patch covers %q", src[p.Start:p.End])
	}
}
