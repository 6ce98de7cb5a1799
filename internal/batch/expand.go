package batch

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandPatterns resolves file paths, directories and ** globs against root.
// It returns absolute regular-file paths, sorted and de-duplicated, plus the
// patterns that matched nothing.
func ExpandPatterns(root string, patterns []string) ([]string, []string, error) {
	files := map[string]bool{}
	var missing []string
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		matches, err := expandPattern(root, pattern)
		if err != nil {
			return nil, nil, err
		}
		if len(matches) == 0 {
			missing = append(missing, pattern)
			continue
		}
		for _, m := range matches {
			files[m] = true
		}
	}
	return sortedSet(files), missing, nil
}

func expandPattern(root, pattern string) ([]string, error) {
	full := filepath.FromSlash(pattern)
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	if !containsGlobMeta(pattern) {
		info, err := os.Stat(full)
		if err != nil {
			return nil, nil
		}
		if !info.IsDir() {
			return absRegular([]string{full}), nil
		}
		// A directory means everything below it.
		return globIn(full, "**/*", pattern)
	}
	rel := path.Clean(filepath.ToSlash(pattern))
	if filepath.IsAbs(filepath.FromSlash(pattern)) || rel == ".." || strings.HasPrefix(rel, "../") {
		hits, err := doublestar.FilepathGlob(full)
		if err != nil {
			return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
		}
		return absRegular(hits), nil
	}
	return globIn(root, rel, pattern)
}

// globIn matches pattern below dir. The directory path is never parsed as a
// pattern, so roots containing glob metacharacters work.
func globIn(dir, pattern, orig string) ([]string, error) {
	hits, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("expand pattern %q: %w", orig, err)
	}
	for i, h := range hits {
		hits[i] = filepath.Join(dir, filepath.FromSlash(h))
	}
	return absRegular(hits), nil
}

func absRegular(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		out = append(out, abs)
	}
	return out
}

func containsGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
