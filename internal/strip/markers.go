package strip

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrEmptyMarker   = errors.New("strip: empty marker")
	ErrInvalidMarker = errors.New("strip: marker is not valid UTF-8")
)

// Pair is a block comment delimiter pair.
type Pair struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Markers is the comment and quote syntax of one language. Order within each
// list is significant: the first marker that matches wins.
type Markers struct {
	SingleLine []string `json:"line_comments,omitempty" yaml:"line_comments,omitempty"`
	MultiLine  []Pair   `json:"block_comments,omitempty" yaml:"block_comments,omitempty"`
	Quotes     []string `json:"quotes,omitempty" yaml:"quotes,omitempty"`
}

// Clone returns a deep copy of m.
func (m Markers) Clone() Markers {
	return Markers{
		SingleLine: append([]string(nil), m.SingleLine...),
		MultiLine:  append([]Pair(nil), m.MultiLine...),
		Quotes:     append([]string(nil), m.Quotes...),
	}
}

// Empty reports whether m configures no markers at all.
func (m Markers) Empty() bool {
	return len(m.SingleLine) == 0 && len(m.MultiLine) == 0 && len(m.Quotes) == 0
}

// Validate checks that every marker is a non-empty UTF-8 string.
func (m Markers) Validate() error {
	for i, s := range m.SingleLine {
		if err := checkMarker(s); err != nil {
			return fmt.Errorf("line_comments[%d]: %w", i, err)
		}
	}
	for i, p := range m.MultiLine {
		if err := checkMarker(p.Start); err != nil {
			return fmt.Errorf("block_comments[%d].start: %w", i, err)
		}
		if err := checkMarker(p.End); err != nil {
			return fmt.Errorf("block_comments[%d].end: %w", i, err)
		}
	}
	for i, q := range m.Quotes {
		if err := checkMarker(q); err != nil {
			return fmt.Errorf("quotes[%d]: %w", i, err)
		}
	}
	return nil
}

func checkMarker(s string) error {
	if s == "" {
		return ErrEmptyMarker
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidMarker, s)
	}
	return nil
}
