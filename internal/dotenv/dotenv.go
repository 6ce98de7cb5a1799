// Package dotenv loads KEY=VALUE pairs from a .env file into the process
// environment. Quoted values are read with the hash-comment scanner, so a
// '#' inside the quotes survives.
package dotenv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strongdm/commentstrip/internal/strip"
)

// Load sets each key from the file at path that is not already in the
// environment. A missing file is not an error.
func Load(path string) error {
	return load(path, false)
}

// Overload is like Load but replaces variables that are already set.
func Overload(path string) error {
	return load(path, true)
}

func load(path string, overwrite bool) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	pairs, err := parse(f)
	if err != nil {
		return fmt.Errorf("dotenv %s: %w", path, err)
	}
	for _, kv := range pairs {
		if !overwrite {
			if _, exists := os.LookupEnv(kv[0]); exists {
				continue
			}
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return fmt.Errorf("dotenv setenv %s: %w", kv[0], err)
		}
	}
	return nil
}

// parse returns [key, value] pairs in file order. Unquoted values end at the
// first '#'. Quoted values go through the hash-comment scanner, which keeps a
// '#' inside the quotes and drops a trailing comment after them.
func parse(r io.Reader) ([][2]string, error) {
	stripQuoted := strip.PythonLikeScanner().Func()
	var pairs [][2]string
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: no '=' found: %q", lineNum, line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNum)
		}

		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(raw, `"`) || strings.HasPrefix(raw, "'") {
			raw = strings.TrimSpace(stripQuoted(raw))
		} else if idx := strings.IndexByte(raw, '#'); idx >= 0 {
			raw = strings.TrimSpace(raw[:idx])
		}
		value, err := unquote(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// unquote removes one pair of matching quotes around v. An opening quote
// without its closing partner is an error.
func unquote(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	switch q := v[0]; q {
	case '"', '\'':
		end := strings.IndexByte(v[1:], q)
		if end < 0 {
			if q == '"' {
				return "", fmt.Errorf("unterminated double-quoted value")
			}
			return "", fmt.Errorf("unterminated single-quoted value")
		}
		return v[1 : end+1], nil
	}
	return v, nil
}
