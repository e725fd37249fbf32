package furigana

import (
	"iter"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Pattern fragments. Go's \s does not include the ideographic space, so it
// is listed explicitly.
const (
	runClass      = `[\x{4E00}-\x{9FAF}0-9\x{FF10}-\x{FF19}]`
	spaceClass    = `[\s\x{3000}]*`
	openBracket   = `[(\x{FF08}]`
	closeBracket  = `[)\x{FF09}]`
	hiraganaClass = `\x{3040}-\x{309F}`
	katakanaClass = `\x{30A0}-\x{30FF}`
)

// Match is one bracket pattern found in a text. Start and End are byte
// offsets, so text[Start:End] == Text.
type Match struct {
	Text    string `json:"text"`
	Run     string `json:"run"`
	Reading string `json:"reading"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Matcher recognizes "kanji（かな）" runs: kanji or digits, optional space,
// an ASCII or full-width opening bracket, kana, and either closing bracket.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles the bracket pattern. With katakana set, readings may
// also be written in katakana.
func NewMatcher(katakana bool) *Matcher {
	kanaClass := hiraganaClass
	if katakana {
		kanaClass += katakanaClass
	}
	expr := `(` + runClass + `+)` + spaceClass + openBracket + spaceClass +
		`([` + kanaClass + `]+)` + spaceClass + closeBracket
	return &Matcher{re: regexp.MustCompile(expr)}
}

// HasMatch reports whether text contains at least one bracket pattern.
func (m *Matcher) HasMatch(text string) bool {
	return m.re.MatchString(text)
}

// FindAll returns every match in text in order. Matches never overlap.
func (m *Matcher) FindAll(text string) []Match {
	var out []Match
	for match := range m.All(text) {
		out = append(out, match)
	}
	return out
}

// All yields matches lazily. Each iteration of the returned sequence scans
// text from the beginning again.
func (m *Matcher) All(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		sc := m.Scanner(text)
		for {
			match, ok := sc.Next()
			if !ok || !yield(match) {
				return
			}
		}
	}
}

// Scanner returns a cursor over the matches in text.
func (m *Matcher) Scanner(text string) *Scanner {
	return &Scanner{re: m.re, text: text}
}

// Convert rewrites text, replacing each match with the markup produced by
// replace. Text outside matches is HTML-escaped, so the result is markup.
func (m *Matcher) Convert(text string, replace func(Match) string) string {
	var b strings.Builder
	last := 0
	for match := range m.All(text) {
		b.WriteString(html.EscapeString(text[last:match.Start]))
		b.WriteString(replace(match))
		last = match.End
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// Scanner walks the matches of one text. Scanning resumes right after the
// end of the previous match.
type Scanner struct {
	re   *regexp.Regexp
	text string
	pos  int
}

// Next returns the next match, or false when the text is exhausted.
func (s *Scanner) Next() (Match, bool) {
	if s.pos > len(s.text) {
		return Match{}, false
	}
	loc := s.re.FindStringSubmatchIndex(s.text[s.pos:])
	if loc == nil {
		s.pos = len(s.text) + 1
		return Match{}, false
	}

	base := s.pos
	match := Match{
		Text:    s.text[base+loc[0] : base+loc[1]],
		Run:     s.text[base+loc[2] : base+loc[3]],
		Reading: s.text[base+loc[4] : base+loc[5]],
		Start:   base + loc[0],
		End:     base + loc[1],
	}
	s.pos = match.End
	return match, true
}

// Reset rewinds the scanner to the start of the text.
func (s *Scanner) Reset() {
	s.pos = 0
}
