// Package strip removes comments from source text while keeping quoted
// literals intact.
//
// A Scanner is built once from a Markers description and then applied to any
// number of texts. Scanning is a single left-to-right pass that keeps a small
// lookbehind window of the most recent characters; a marker matches when the
// window ends with it. In normal text every marker kind is checked, in this
// order: line comments, block comment starts, quotes. Inside a quote only the
// closing quote is checked and everything is copied. Inside a comment nothing
// is copied and only the comment's end (or a line break, for line comments)
// is checked. Comments and quotes left open at end of input end silently.
//
// When a comment marker matches, its characters are taken back out of the
// output, but only those emitted in normal text since the last comment or
// quote closed. The window is never reset, so a match may reach back into an
// earlier comment; that part was never emitted and is not removed again. For
// example "a/*x*//b" becomes "a".
package strip

import "unicode/utf8"

type mode int

const (
	modeNormal mode = iota
	modeQuote
	modeComment
)

type runePair struct {
	start []rune
	end   []rune
}

// Scanner strips one language's comments. It is immutable and safe for
// concurrent use.
type Scanner struct {
	markers Markers
	single  [][]rune
	multi   []runePair
	quotes  [][]rune
	width   int
}

// New builds a Scanner for m. It fails when a marker is empty or not valid
// UTF-8.
func New(m Markers) (*Scanner, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s := &Scanner{markers: m.Clone()}
	for _, l := range m.SingleLine {
		s.single = append(s.single, s.runes(l))
	}
	for _, p := range m.MultiLine {
		s.multi = append(s.multi, runePair{start: s.runes(p.Start), end: s.runes(p.End)})
	}
	for _, q := range m.Quotes {
		s.quotes = append(s.quotes, s.runes(q))
	}
	return s, nil
}

// MustNew is like New but panics on an invalid marker set.
func MustNew(m Markers) *Scanner {
	s, err := New(m)
	if err != nil {
		panic(err)
	}
	return s
}

// runes converts a marker and widens the lookbehind window to fit it.
func (s *Scanner) runes(marker string) []rune {
	r := []rune(marker)
	if len(r) > s.width {
		s.width = len(r)
	}
	return r
}

// Width is the lookbehind window size: the longest marker in runes.
func (s *Scanner) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

// Markers returns a copy of the scanner's marker set.
func (s *Scanner) Markers() Markers {
	if s == nil {
		return Markers{}
	}
	return s.markers.Clone()
}

// Func returns Strip as a plain function value.
func (s *Scanner) Func() func(string) string {
	return s.Strip
}

// Strip returns text with comments removed. Quoted literals, including their
// delimiters, are copied verbatim. A nil Scanner returns text unchanged.
func (s *Scanner) Strip(text string) string {
	if s == nil || text == "" {
		return text
	}
	out := make([]byte, 0, len(text))
	w := newWindow(s.width)

	state := modeNormal
	// end is the marker that closes the current quote or block comment; nil
	// inside a line comment.
	var end []rune
	// emitted counts characters copied in normal mode since the last mode
	// change; only those may be taken back when a marker completes.
	emitted := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		raw := text[i : i+size]
		i += size
		if r == utf8.RuneError && size == 1 {
			w.push(absent)
		} else {
			w.push(r)
		}

		switch state {
		case modeNormal:
			out = append(out, raw...)
			emitted++
			if m := firstMatch(w, s.single); m != nil {
				out = dropTail(out, m, emitted)
				state, end, emitted = modeComment, nil, 0
				continue
			}
			if p, ok := firstPairMatch(w, s.multi); ok {
				out = dropTail(out, p.start, emitted)
				state, end, emitted = modeComment, p.end, 0
				continue
			}
			if q := firstMatch(w, s.quotes); q != nil {
				state, end, emitted = modeQuote, q, 0
			}
		case modeQuote:
			out = append(out, raw...)
			if w.endsWith(end) {
				state, end = modeNormal, nil
			}
		case modeComment:
			if end != nil {
				if w.endsWith(end) {
					state, end = modeNormal, nil
				}
			} else if r == '\n' || r == '\r' {
				state = modeNormal
			}
		}
	}
	return string(out)
}

func firstMatch(w *window, markers [][]rune) []rune {
	for _, m := range markers {
		if w.endsWith(m) {
			return m
		}
	}
	return nil
}

func firstPairMatch(w *window, pairs []runePair) (runePair, bool) {
	for _, p := range pairs {
		if w.endsWith(p.start) {
			return p, true
		}
	}
	return runePair{}, false
}

// dropTail removes the trailing characters of marker from out, limited to the
// emitted characters that normal mode actually copied.
func dropTail(out []byte, marker []rune, emitted int) []byte {
	k := len(marker)
	if emitted < k {
		k = emitted
	}
	n := 0
	for _, r := range marker[len(marker)-k:] {
		n += utf8.RuneLen(r)
	}
	return out[:len(out)-n]
}
