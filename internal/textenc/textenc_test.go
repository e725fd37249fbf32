package textenc

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func encodeWith(t *testing.T, tr transform.Transformer, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(tr, []byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Encoding
		wantErr bool
	}{
		{"utf-8", UTF8, false},
		{"", UTF8, false},
		{"EUC-JP", EUCJP, false},
		{"sjis", ShiftJIS, false},
		{"Shift_JIS", ShiftJIS, false},
		{"auto", Auto, false},
		{"latin1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("error = %v, want ErrInvalidEncoding", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	text := "漢字(かんじ)のテスト"
	for _, enc := range []Encoding{UTF8, EUCJP, ShiftJIS} {
		t.Run(string(enc), func(t *testing.T) {
			b, err := Encode(text, enc)
			if err != nil {
				t.Fatal(err)
			}
			got, used, err := Decode(b, enc)
			if err != nil {
				t.Fatal(err)
			}
			if got != text || used != enc {
				t.Errorf("round trip = %q (%s), want %q", got, used, text)
			}
		})
	}
}

func TestDecodeShiftJIS(t *testing.T) {
	raw := encodeWith(t, japanese.ShiftJIS.NewEncoder(), "駅(えき)")
	got, _, err := Decode(raw, ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if got != "駅(えき)" {
		t.Errorf("Decode() = %q", got)
	}
}

func TestEncodeEscapesUnsupported(t *testing.T) {
	got, err := Encode("駅😀", ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(got, []byte("&#128512;")) {
		t.Errorf("Encode() = %q, want numeric reference for emoji", got)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    Encoding
	}{
		{
			name:    "meta charset shift_jis",
			content: []byte(`<html><head><meta charset="Shift_JIS"></head><body></body></html>`),
			want:    ShiftJIS,
		},
		{
			name:    "meta charset euc-jp",
			content: []byte(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=EUC-JP"></head></html>`),
			want:    EUCJP,
		},
		{
			name:    "utf-8 bytes",
			content: []byte("<p>駅(えき)</p>"),
			want:    UTF8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.content, ""); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReaderWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, EUCJP)
	if _, err := io.WriteString(w, "校庭"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(NewReader(&buf, EUCJP))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "校庭" {
		t.Errorf("read back %q", got)
	}
}
