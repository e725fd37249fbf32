// Package textenc converts between UTF-8 and the legacy Japanese encodings
// still found on older pages.
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names a supported text encoding.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	EUCJP    Encoding = "euc-jp"
	ShiftJIS Encoding = "sjis"
	// Auto sniffs an HTML document's declared or likely encoding.
	Auto Encoding = "auto"
)

// ErrInvalidEncoding is returned by Parse for unknown names.
var ErrInvalidEncoding = errors.New("invalid encoding")

// Parse converts a name to an Encoding. Common aliases are accepted.
func Parse(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "euc-jp", "eucjp":
		return EUCJP, nil
	case "sjis", "shift_jis", "shift-jis", "shiftjis", "cp932", "windows-31j":
		return ShiftJIS, nil
	case "auto":
		return Auto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEncoding, s)
}

func (enc Encoding) encoding() encoding.Encoding {
	switch enc {
	case EUCJP:
		return japanese.EUCJP
	case ShiftJIS:
		return japanese.ShiftJIS
	default:
		return unicode.UTF8
	}
}

// Detect guesses the encoding of an HTML document from its first bytes and
// an optional Content-Type header value. Anything not recognized as EUC-JP
// or Shift_JIS is treated as UTF-8.
func Detect(content []byte, contentType string) Encoding {
	_, name, _ := charset.DetermineEncoding(content, contentType)
	if enc, err := Parse(name); err == nil && enc != Auto {
		return enc
	}
	return UTF8
}

// Decode converts content in enc to UTF-8. Auto sniffs content first and
// reports the encoding it used.
func Decode(content []byte, enc Encoding) (string, Encoding, error) {
	if enc == Auto {
		enc = Detect(content, "")
	}
	if enc == UTF8 {
		return string(content), enc, nil
	}
	out, _, err := transform.Bytes(enc.encoding().NewDecoder(), content)
	if err != nil {
		return "", enc, fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(out), enc, nil
}

// Encode converts UTF-8 text to enc. Characters enc cannot represent are
// written as HTML numeric character references.
func Encode(text string, enc Encoding) ([]byte, error) {
	if enc == UTF8 || enc == Auto {
		return []byte(text), nil
	}
	e := encoding.HTMLEscapeUnsupported(enc.encoding().NewEncoder())
	out, _, err := transform.Bytes(e, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", enc, err)
	}
	return out, nil
}

// NewReader decodes r from enc to UTF-8.
func NewReader(r io.Reader, enc Encoding) io.Reader {
	if enc == UTF8 || enc == Auto {
		return r
	}
	return transform.NewReader(r, enc.encoding().NewDecoder())
}

// NewWriter encodes UTF-8 written to it as enc.
func NewWriter(w io.Writer, enc Encoding) io.WriteCloser {
	if enc == UTF8 || enc == Auto {
		return nopCloser{w}
	}
	return transform.NewWriter(w, encoding.HTMLEscapeUnsupported(enc.encoding().NewEncoder()))
}

// ReadAll decodes everything from r.
func ReadAll(r io.Reader, enc Encoding) (string, Encoding, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", enc, fmt.Errorf("reading input: %w", err)
	}
	return Decode(buf.Bytes(), enc)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
