// Package lang maps language names and file paths to comment scanners.
package lang

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/strongdm/commentstrip/internal/strip"
)

var ErrUnknownLanguage = errors.New("unknown language")

const DefaultCacheSize = 32

// Language is a named marker set plus the file extensions it applies to.
type Language struct {
	Name       string        `json:"name"`
	Extensions []string      `json:"extensions"`
	Markers    strip.Markers `json:"markers"`
}

// Builtins returns the languages every registry starts with.
func Builtins() []Language {
	return []Language{
		{
			Name: "c",
			Extensions: []string{
				".c", ".h", ".cc", ".cpp", ".hpp", ".go", ".java", ".js", ".ts",
				".rs", ".cs", ".swift", ".kt", ".scala", ".proto",
			},
			Markers: strip.CLike(),
		},
		{
			Name:       "python",
			Extensions: []string{".py", ".sh", ".bash", ".rb", ".pl", ".r", ".yaml", ".yml", ".toml", ".mk"},
			Markers:    strip.PythonLike(),
		},
	}
}

// baseNames maps extensionless file names to languages.
var baseNames = map[string]string{
	"makefile":   "python",
	"dockerfile": "python",
}

// Registry resolves languages by name or path. Scanners are built on first
// use and kept in a bounded LRU cache.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]Language
	byExt     map[string]string
	scanners  *lru.Cache[string, *strip.Scanner]
}

// NewRegistry returns a registry holding the built-in languages. cacheSize
// bounds the number of cached scanners; zero or less selects DefaultCacheSize.
func NewRegistry(cacheSize int) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *strip.Scanner](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("lang: scanner cache: %w", err)
	}
	r := &Registry{
		languages: map[string]Language{},
		byExt:     map[string]string{},
		scanners:  cache,
	}
	for _, l := range Builtins() {
		if err := r.Register(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds l, replacing any language with the same name. Its extensions
// are re-pointed to l even if another language claimed them before.
func (r *Registry) Register(l Language) error {
	name := normalizeName(l.Name)
	if name == "" {
		return fmt.Errorf("lang: language name is required")
	}
	if err := l.Markers.Validate(); err != nil {
		return fmt.Errorf("lang %s: %w", name, err)
	}
	exts := make([]string, 0, len(l.Extensions))
	for _, e := range l.Extensions {
		e = normalizeExt(e)
		if e == "" {
			return fmt.Errorf("lang %s: empty extension", name)
		}
		exts = append(exts, e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.languages[name]; ok {
		for _, e := range prev.Extensions {
			if r.byExt[e] == name {
				delete(r.byExt, e)
			}
		}
	}
	r.languages[name] = Language{Name: name, Extensions: exts, Markers: l.Markers.Clone()}
	for _, e := range exts {
		r.byExt[e] = name
	}
	r.scanners.Remove(name)
	return nil
}

// Lookup returns the language registered under name.
func (r *Registry) Lookup(name string) (Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.languages[normalizeName(name)]
	if !ok {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	l.Extensions = append([]string(nil), l.Extensions...)
	l.Markers = l.Markers.Clone()
	return l, nil
}

// ForPath picks a language from the file's extension, or from its base name
// for files like Makefile.
func (r *Registry) ForPath(path string) (Language, error) {
	base := filepath.Base(path)
	r.mu.RLock()
	name, ok := r.byExt[normalizeExt(filepath.Ext(base))]
	r.mu.RUnlock()
	if !ok {
		name, ok = baseNames[strings.ToLower(base)]
	}
	if !ok {
		return Language{}, fmt.Errorf("%w for %s", ErrUnknownLanguage, path)
	}
	return r.Lookup(name)
}

// Names lists registered language names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.languages))
	for name := range r.languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scanner returns the scanner for the named language. The build runs under
// the registry lock so a concurrent Register cannot be overwritten by a scanner
// for the markers it replaced.
func (r *Registry) Scanner(name string) (*strip.Scanner, error) {
	key := normalizeName(name)
	if s, ok := r.scanners.Get(key); ok {
		return s, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scanners.Get(key); ok {
		return s, nil
	}
	l, ok := r.languages[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	s, err := strip.New(l.Markers)
	if err != nil {
		return nil, fmt.Errorf("lang %s: %w", key, err)
	}
	r.scanners.Add(key, s)
	return s, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
