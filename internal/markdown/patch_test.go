package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func TestApplyPatches(t *testing.T) {
	eki := []byte("<ruby>駅<rp>(</rp><rt>えき</rt><rp>)</rp></ruby>")

	tests := []struct {
		name        string
		original    []byte
		patches     []Patch
		want        []byte
		wantErr     bool
		errContains string
	}{
		{
			name:     "no patches",
			original: []byte("駅に行く"),
			patches:  []Patch{},
			want:     []byte("駅に行く"),
		},
		{
			name:     "single patch",
			original: []byte("to 駅(えき)"),
			patches:  []Patch{{Start: 3, End: 14, NewText: eki}},
			want:     append([]byte("to "), eki...),
		},
		{
			name:     "patches sorted before applying",
			original: []byte("ab cd"),
			patches: []Patch{
				{Start: 3, End: 5, NewText: []byte("CD")},
				{Start: 0, End: 2, NewText: []byte("AB")},
			},
			want: []byte("AB CD"),
		},
		{
			name:     "adjacent patches",
			original: []byte("abcd"),
			patches: []Patch{
				{Start: 0, End: 2, NewText: []byte("X")},
				{Start: 2, End: 4, NewText: []byte("Y")},
			},
			want: []byte("XY"),
		},
		{
			name:     "patch resulting in shorter text",
			original: []byte("Hello world."),
			patches:  []Patch{{Start: 6, End: 11, NewText: []byte("")}},
			want:     []byte("Hello ."),
		},
		{
			name:     "overlapping patches should error",
			original: []byte("LongWordExample"),
			patches: []Patch{
				{Start: 0, End: 8, NewText: []byte("NewLong")},
				{Start: 5, End: 12, NewText: []byte("NewMid")},
			},
			wantErr:     true,
			errContains: "overlapping patches detected",
		},
		{
			name:        "out of bounds patch (start)",
			original:    []byte("Hello"),
			patches:     []Patch{{Start: -1, End: 3, NewText: []byte("Bad")}},
			wantErr:     true,
			errContains: "invalid patch bounds",
		},
		{
			name:        "out of bounds patch (end)",
			original:    []byte("Hello"),
			patches:     []Patch{{Start: 0, End: 6, NewText: []byte("Bad")}},
			wantErr:     true,
			errContains: "invalid patch bounds",
		},
		{
			name:        "inverted patch",
			original:    []byte("Hello"),
			patches:     []Patch{{Start: 3, End: 2, NewText: []byte("Bad")}},
			wantErr:     true,
			errContains: "invalid patch bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyPatches(tt.original, tt.patches)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyPatches() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("ApplyPatches() error = %q, want containing %q", err.Error(), tt.errContains)
				}
				return
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ApplyPatches() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyPatchesDoesNotAliasInput(t *testing.T) {
	original := []byte("abc")
	got, err := ApplyPatches(original, nil)
	if err != nil {
		t.Fatal(err)
	}
	got[0] = 'X'
	if original[0] != 'a' {
		t.Error("result shares memory with input")
	}
}
