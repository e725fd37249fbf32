package furigana

import (
	"testing"

	"github.com/f3rmion/furi/internal/reading"
	"github.com/f3rmion/furi/internal/settings"
)

func TestEngineConvertBracket(t *testing.T) {
	e := NewEngine(reading.NewStore(testDictionary()), nil, nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "per-character ruby",
			text: "校庭（こうてい）で",
			want: "<ruby>校<rp>(</rp><rt>こう</rt><rp>)</rp></ruby>" +
				"<ruby>庭<rp>(</rp><rt>てい</rt><rp>)</rp></ruby>で",
		},
		{
			name: "rejected run annotated as a whole",
			text: "日本語(にほ)",
			want: "<ruby>日本語<rp>(</rp><rt>にほ</rt><rp>)</rp></ruby>",
		},
		{
			name: "text without pattern is escaped only",
			text: "a < b",
			want: "a &lt; b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ConvertBracket(tt.text); got != tt.want {
				t.Errorf("ConvertBracket(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestEngineConvertAuto(t *testing.T) {
	e := NewEngine(reading.NewStore(testDictionary()), nil, nil)
	got := e.ConvertAuto("駅")
	want := "<ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>"
	if got != want {
		t.Errorf("ConvertAuto() = %q, want %q", got, want)
	}
}

func TestEngineSeesSwappedDictionary(t *testing.T) {
	store := reading.NewStore(reading.Empty())
	e := NewEngine(store, nil, nil)

	if got := e.ConvertAuto("駅"); got != "駅" {
		t.Fatalf("ConvertAuto() with empty dictionary = %q", got)
	}
	store.Swap(testDictionary())
	if got := e.ConvertAuto("駅"); got == "駅" {
		t.Error("engine did not pick up swapped dictionary")
	}
}

func TestEnginePredicates(t *testing.T) {
	e := NewEngine(nil, NewMatcher(false), nil)
	if !e.HasBracketPattern("駅(えき)") || e.HasBracketPattern("駅") {
		t.Error("HasBracketPattern mismatch")
	}
	if !e.HasKanji("駅") || e.HasKanji("えき") {
		t.Error("HasKanji mismatch")
	}
}

func TestEngineConvertEscapesInEveryMode(t *testing.T) {
	e := NewEngine(reading.NewStore(testDictionary()), nil, nil)
	text := "a<b & 駅(えき)"

	tests := []struct {
		mode settings.Mode
		want string
	}{
		{settings.ModeOff, "a&lt;b &amp; 駅(えき)"},
		{"sideways", "a&lt;b &amp; 駅(えき)"},
		{settings.ModeBracket, "a&lt;b &amp; <ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>"},
	}
	for _, tt := range tests {
		if got := e.Convert(text, tt.mode); got != tt.want {
			t.Errorf("Convert(%q, %q) = %q, want %q", text, tt.mode, got, tt.want)
		}
	}
}

func TestEngineConvertMode(t *testing.T) {
	e := NewEngine(reading.NewStore(testDictionary()), nil, nil)
	text := "駅(えき)と校"

	tests := []struct {
		mode settings.Mode
		want string
	}{
		{settings.ModeOff, text},
		{settings.ModeBracket, "<ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>と校"},
		{settings.ModeAuto, "<ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>(えき)と" +
			"<ruby>校<rp>(</rp><rt>こう</rt><rp>)</rp></ruby>"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := e.Convert(text, tt.mode); got != tt.want {
				t.Errorf("Convert(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}
