package strip

import (
	"reflect"
	"testing"
)

func TestPreset_Lookup(t *testing.T) {
	for _, name := range []string{"c", "C-Like", " c-like "} {
		m, ok := Preset(name)
		if !ok {
			t.Fatalf("Preset(%q) not found", name)
		}
		if !reflect.DeepEqual(m, CLike()) {
			t.Fatalf("Preset(%q) = %+v, want CLike", name, m)
		}
	}
	m, ok := Preset("python")
	if !ok || !reflect.DeepEqual(m, PythonLike()) {
		t.Fatalf("Preset(python) = %+v, %v", m, ok)
	}
	if _, ok := Preset("cobol"); ok {
		t.Fatalf("unexpected preset cobol")
	}
}

func TestPreset_ReturnsFreshCopies(t *testing.T) {
	m := CLike()
	m.SingleLine[0] = "#"
	if CLike().SingleLine[0] != "//" {
		t.Fatalf("CLike shares its slices")
	}
}

func TestPresetNames(t *testing.T) {
	want := []string{"c", "c-like", "python", "python-like"}
	if got := PresetNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("PresetNames() = %v, want %v", got, want)
	}
}
