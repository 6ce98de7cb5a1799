package lang

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/strongdm/commentstrip/internal/strip"
)

func newTestRegistry(t *testing.T, size int) *Registry {
	t.Helper()
	r, err := NewRegistry(size)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestRegistry_Builtins(t *testing.T) {
	r := newTestRegistry(t, 0)
	if got, want := r.Names(), []string{"c", "python"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	c, err := r.Lookup("C")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Markers, strip.CLike()) {
		t.Fatalf("c markers: %+v", c.Markers)
	}
}

func TestRegistry_ForPath(t *testing.T) {
	r := newTestRegistry(t, 0)
	cases := map[string]string{
		"main.go":             "c",
		"src/Lib.JAVA":        "c",
		"include/x.h":         "c",
		"tool.py":             "python",
		"ci/deploy.yml":       "python",
		"Makefile":            "python",
		"docker/Dockerfile":   "python",
		"scripts/run.sh":      "python",
		"/abs/path/schema.rs": "c",
		"weird.name.proto":    "c",
	}
	for path, want := range cases {
		l, err := r.ForPath(path)
		if err != nil {
			t.Fatalf("ForPath(%q): %v", path, err)
		}
		if l.Name != want {
			t.Fatalf("ForPath(%q) = %q, want %q", path, l.Name, want)
		}
	}
	if _, err := r.ForPath("README.md"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("ForPath(README.md) error: got %v want ErrUnknownLanguage", err)
	}
}

func TestRegistry_RegisterReplacesAndRepointsExtensions(t *testing.T) {
	r := newTestRegistry(t, 0)
	sql := Language{
		Name:       "SQL",
		Extensions: []string{"sql", ".h"},
		Markers: strip.Markers{
			SingleLine: []string{"--"},
			MultiLine:  []strip.Pair{{Start: "/*", End: "*/"}},
			Quotes:     []string{"'"},
		},
	}
	if err := r.Register(sql); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"q.sql", "x.h"} {
		l, err := r.ForPath(path)
		if err != nil || l.Name != "sql" {
			t.Fatalf("ForPath(%q) = %+v, %v; want sql", path, l, err)
		}
	}

	s, err := r.Scanner("sql")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Strip("select 'a--b' -- note\nfrom t"); got != "select 'a--b' from t" {
		t.Fatalf("sql strip: got %q", got)
	}

	// Re-registering drops the old extension set and the cached scanner.
	if err := r.Register(Language{Name: "sql", Extensions: []string{".psql"}, Markers: strip.Markers{SingleLine: []string{"#"}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ForPath("q.sql"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("q.sql still resolves after re-register: %v", err)
	}
	s, err = r.Scanner("sql")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Strip("a -- b # c"); got != "a -- b " {
		t.Fatalf("stale scanner after re-register: got %q", got)
	}
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	r := newTestRegistry(t, 0)
	if err := r.Register(Language{Name: " "}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	err := r.Register(Language{Name: "bad", Markers: strip.Markers{Quotes: []string{""}}})
	if !errors.Is(err, strip.ErrEmptyMarker) {
		t.Fatalf("got %v want ErrEmptyMarker", err)
	}
	if err := r.Register(Language{Name: "bad", Extensions: []string{" "}}); err == nil {
		t.Fatalf("expected error for empty extension")
	}
}

func TestRegistry_ScannerCache(t *testing.T) {
	r := newTestRegistry(t, 1)
	c1, err := r.Scanner("c")
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := r.Scanner("c")
	if c1 != c2 {
		t.Fatalf("expected cached scanner to be reused")
	}
	// Size 1: loading python evicts c, which is then rebuilt.
	if _, err := r.Scanner("python"); err != nil {
		t.Fatal(err)
	}
	c3, _ := r.Scanner("c")
	if c3 == c1 {
		t.Fatalf("expected c to be rebuilt after eviction")
	}
	if got := c3.Strip("a/*b*/c"); got != "ac" {
		t.Fatalf("rebuilt scanner: got %q", got)
	}
	if _, err := r.Scanner("cobol"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("got %v want ErrUnknownLanguage", err)
	}
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	r := newTestRegistry(t, 0)
	l, _ := r.Lookup("c")
	l.Markers.SingleLine[0] = "#"
	l.Extensions[0] = ".zzz"
	again, _ := r.Lookup("c")
	if again.Markers.SingleLine[0] != "//" || again.Extensions[0] != ".c" {
		t.Fatalf("Lookup leaked registry state: %+v", again)
	}
}

func TestRegistry_ScannerNeverCachesReplacedMarkers(t *testing.T) {
	r := newTestRegistry(t, 0)
	hash := strip.Markers{SingleLine: []string{"#"}}
	dash := strip.Markers{SingleLine: []string{"--"}}
	if err := r.Register(Language{Name: "cfg", Markers: hash}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m := hash
			if i%2 == 1 {
				m = dash
			}
			if err := r.Register(Language{Name: "cfg", Markers: m}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if _, err := r.Scanner("cfg"); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	l, err := r.Lookup("cfg")
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Scanner("cfg")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Markers(); !reflect.DeepEqual(got, l.Markers) {
		t.Fatalf("cached scanner markers %+v, registered %+v", got, l.Markers)
	}
}
