package strip

import (
	"sort"
	"strings"
)

// CLike is the marker set for C and its syntactic relatives.
func CLike() Markers {
	return Markers{
		SingleLine: []string{"//"},
		MultiLine:  []Pair{{Start: "/*", End: "*/"}},
		Quotes:     []string{`"`},
	}
}

// PythonLike is the marker set for Python and other hash-comment languages.
func PythonLike() Markers {
	return Markers{
		SingleLine: []string{"#"},
		Quotes:     []string{`"`, `'`},
	}
}

var (
	cLikeScanner      = MustNew(CLike())
	pythonLikeScanner = MustNew(PythonLike())
)

// CLikeScanner returns the shared scanner for CLike.
func CLikeScanner() *Scanner { return cLikeScanner }

// PythonLikeScanner returns the shared scanner for PythonLike.
func PythonLikeScanner() *Scanner { return pythonLikeScanner }

var presets = map[string]func() Markers{
	"c":           CLike,
	"c-like":      CLike,
	"python":      PythonLike,
	"python-like": PythonLike,
}

// Preset returns the marker set registered under name (case-insensitive).
func Preset(name string) (Markers, bool) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Markers{}, false
	}
	return fn(), true
}

// PresetNames lists the accepted preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
