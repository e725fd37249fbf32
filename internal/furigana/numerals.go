package furigana

import "github.com/f3rmion/furi/internal/kana"

// numeralReadings lists native readings per digit. The order is significant:
// the segmenter takes the first entry the reading starts with, so longer
// forms sharing a prefix ("よん" before "よ") must come first.
var numeralReadings = map[rune][]string{
	'0': {"れい", "ぜろ"},
	'1': {"いち", "いっ", "ひと"},
	'2': {"に", "ふた"},
	'3': {"さん", "みっ", "み"},
	'4': {"よん", "よ", "し"},
	'5': {"ご", "いつ"},
	'6': {"ろく", "ろっ", "むっ", "む"},
	'7': {"なな", "しち"},
	'8': {"はち", "はっ", "やっ", "や"},
	'9': {"きゅう", "く", "ここの"},
}

// NumeralReadings returns the candidate readings for an ASCII or full-width
// digit.
func NumeralReadings(r rune) ([]string, bool) {
	readings, ok := numeralReadings[kana.NarrowDigit(r)]
	return readings, ok
}
