// Package furigana splits bracketed kanji readings into per-character ruby
// annotations and renders them as markup.
package furigana

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/f3rmion/furi/internal/kana"
)

// ErrInvalidArgument is returned when a caller passes input outside an
// operation's domain, such as an empty run or reading.
var ErrInvalidArgument = errors.New("invalid argument")

// Lookup resolves a character to its candidate readings, most common first.
// ok is false when the character has no entry at all.
type Lookup interface {
	Lookup(r rune) (readings []string, ok bool)
}

// Pair is one character of a run with the reading assigned to it.
type Pair struct {
	Char    rune
	Reading string
}

// Segmentation assigns a reading to every character of a run, in order.
type Segmentation []Pair

// Reading returns the concatenation of all assigned readings.
func (s Segmentation) Reading() string {
	var b strings.Builder
	for _, p := range s {
		b.WriteString(p.Reading)
	}
	return b.String()
}

// Run returns the characters of the segmentation as a string.
func (s Segmentation) Run() string {
	var b strings.Builder
	for _, p := range s {
		b.WriteRune(p.Char)
	}
	return b.String()
}

// Segmenter partitions a surface reading across the characters of a run.
type Segmenter struct {
	dict Lookup
}

// NewSegmenter creates a segmenter backed by dict. A nil dict behaves like an
// empty dictionary, so every split falls back to the even heuristic.
func NewSegmenter(dict Lookup) *Segmenter {
	return &Segmenter{dict: dict}
}

// Segment assigns a slice of reading to each character of run.
//
// Characters are processed left to right. A numeral takes the first of its
// native readings that the remaining text starts with. Any other non-last
// character takes the shortest prefix after which a candidate reading of the
// next character begins (voicing ignored). Failing both, it takes
// ceil(remaining/charsLeft) kana. The last character takes the rest.
//
// Segment fails with ErrInvalidArgument on empty input, when run holds
// anything but kanji and digits, when reading holds anything but kana, or
// when reading has fewer kana than run has characters.
func (s *Segmenter) Segment(run, reading string) (Segmentation, error) {
	chars := []rune(run)
	rest := []rune(reading)
	if len(chars) == 0 {
		return nil, fmt.Errorf("%w: empty character run", ErrInvalidArgument)
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: empty reading for %q", ErrInvalidArgument, run)
	}
	if i := slices.IndexFunc(chars, func(r rune) bool { return !kana.IsKanji(r) && !kana.IsDigit(r) }); i >= 0 {
		return nil, fmt.Errorf("%w: %q in run %q is not a kanji or digit", ErrInvalidArgument, chars[i], run)
	}
	if i := slices.IndexFunc(rest, func(r rune) bool { return !kana.IsKana(r) }); i >= 0 {
		return nil, fmt.Errorf("%w: %q in reading %q is not kana", ErrInvalidArgument, rest[i], reading)
	}
	if len(rest) < len(chars) {
		return nil, fmt.Errorf("%w: reading %q is shorter than run %q", ErrInvalidArgument, reading, run)
	}

	seg := make(Segmentation, 0, len(chars))
	for i, c := range chars {
		charsLeft := len(chars) - i
		if charsLeft == 1 {
			seg = append(seg, Pair{Char: c, Reading: string(rest)})
			break
		}

		// Leave at least one kana for each character still to come.
		limit := len(rest) - (charsLeft - 1)

		n := s.numeralSplit(c, rest, limit)
		if n == 0 {
			n = s.anchoredSplit(chars[i+1], rest, limit)
		}
		if n == 0 {
			n = evenSplit(len(rest), charsLeft)
		}

		seg = append(seg, Pair{Char: c, Reading: string(rest[:n])})
		rest = rest[n:]
	}
	return seg, nil
}

// numeralSplit returns the length of the first numeral reading rest starts
// with, or 0 if c is not a digit or nothing fits within limit.
func (s *Segmenter) numeralSplit(c rune, rest []rune, limit int) int {
	candidates, ok := NumeralReadings(c)
	if !ok {
		return 0
	}
	for _, cand := range candidates {
		cr := []rune(cand)
		if len(cr) <= limit && hasPrefix(rest, cr) {
			return len(cr)
		}
	}
	return 0
}

// anchoredSplit returns the smallest k such that rest[k:] begins with a
// reading of next, or 0 if next has no entry or no candidate matches.
func (s *Segmenter) anchoredSplit(next rune, rest []rune, limit int) int {
	candidates := s.candidates(next)
	if len(candidates) == 0 {
		return 0
	}

	runes := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		if cand != "" {
			runes = append(runes, []rune(cand))
		}
	}

	for k := 1; k <= limit && k < len(rest); k++ {
		for _, cr := range runes {
			if kana.HasPrefix(rest[k:], cr) {
				return k
			}
		}
	}
	return 0
}

// candidates prefers the dictionary entry for r and falls back to the
// numeral table for digits the dictionary does not know.
func (s *Segmenter) candidates(r rune) []string {
	if s.dict != nil {
		if readings, ok := s.dict.Lookup(r); ok {
			return readings
		}
	}
	readings, _ := NumeralReadings(r)
	return readings
}

// evenSplit is ceil(remaining / charsLeft).
func evenSplit(remaining, charsLeft int) int {
	return (remaining + charsLeft - 1) / charsLeft
}

func hasPrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}
