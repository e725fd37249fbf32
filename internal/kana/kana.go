// Package kana classifies Japanese characters and normalizes kana for
// fuzzy reading comparison.
package kana

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Character ranges used throughout furi.
const (
	KanjiFirst    = 0x4E00 // CJK Unified Ideographs, common block
	KanjiLast     = 0x9FAF
	HiraganaFirst = 0x3040
	HiraganaLast  = 0x309F
	KatakanaFirst = 0x30A0
	KatakanaLast  = 0x30FF

	ideographicSpace = '　'
)

// baseForms maps voiced and semi-voiced hiragana to their unvoiced base.
var baseForms = map[rune]rune{
	'が': 'か', 'ぎ': 'き', 'ぐ': 'く', 'げ': 'け', 'ご': 'こ',
	'ざ': 'さ', 'じ': 'し', 'ず': 'す', 'ぜ': 'せ', 'ぞ': 'そ',
	'だ': 'た', 'ぢ': 'ち', 'づ': 'つ', 'で': 'て', 'ど': 'と',
	'ば': 'は', 'ぱ': 'は',
	'び': 'ひ', 'ぴ': 'ひ',
	'ぶ': 'ふ', 'ぷ': 'ふ',
	'べ': 'へ', 'ぺ': 'へ',
	'ぼ': 'ほ', 'ぽ': 'ほ',
}

// BaseForm strips dakuten or handakuten from r. Characters outside the
// voiced hiragana set are returned unchanged.
func BaseForm(r rune) rune {
	if b, ok := baseForms[r]; ok {
		return b
	}
	return r
}

// Equivalent reports whether a and b should be treated as the same kana when
// anchoring a dictionary reading against surface text. Voicing marks are
// ignored and katakana compares equal to the matching hiragana.
func Equivalent(a, b rune) bool {
	if a == b || BaseForm(a) == BaseForm(b) {
		return true
	}
	return BaseForm(toHiraganaRune(a)) == BaseForm(toHiraganaRune(b))
}

// HasPrefix reports whether s starts with prefix under Equivalent.
func HasPrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if !Equivalent(s[i], r) {
			return false
		}
	}
	return true
}

// IsKanji reports whether r lies in the common CJK ideograph block.
func IsKanji(r rune) bool {
	return r >= KanjiFirst && r <= KanjiLast
}

// IsDigit reports whether r is an ASCII or full-width decimal digit.
func IsDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= '０' && r <= '９')
}

// IsHiragana reports whether r is in the hiragana block.
func IsHiragana(r rune) bool {
	return r >= HiraganaFirst && r <= HiraganaLast
}

// IsKatakana reports whether r is in the katakana block.
func IsKatakana(r rune) bool {
	return r >= KatakanaFirst && r <= KatakanaLast
}

// IsKana reports whether r is hiragana or katakana.
func IsKana(r rune) bool {
	return IsHiragana(r) || IsKatakana(r)
}

// IsSpace reports whether r is ASCII whitespace or the ideographic space.
func IsSpace(r rune) bool {
	return r == ideographicSpace || (r < unicode.MaxASCII && unicode.IsSpace(r))
}

// HasKanji reports whether text contains at least one kanji.
func HasKanji(text string) bool {
	return strings.IndexFunc(text, IsKanji) >= 0
}

// NarrowDigit folds a full-width digit to its ASCII form.
func NarrowDigit(r rune) rune {
	if r < '０' || r > '９' {
		return r
	}
	n := []rune(width.Narrow.String(string(r)))
	if len(n) != 1 {
		return r
	}
	return n[0]
}

// ToHiragana converts katakana in s to hiragana. ヷ-ヺ and the prolonged
// sound mark have no hiragana counterpart and are kept.
func ToHiragana(s string) string {
	return strings.Map(toHiraganaRune, s)
}

func toHiraganaRune(r rune) rune {
	if r >= 'ァ' && r <= 'ヶ' {
		return r - 0x60
	}
	return r
}
