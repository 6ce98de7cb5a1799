// Package config loads the commentstrip configuration file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/strongdm/commentstrip/internal/lang"
	"github.com/strongdm/commentstrip/internal/strip"
)

const (
	EnvConfigPath = "COMMENTSTRIP_CONFIG"
	EnvJobs       = "COMMENTSTRIP_JOBS"
)

//go:embed schema.json
var schemaJSON []byte

type File struct {
	Version   int                       `json:"version" yaml:"version"`
	Jobs      int                       `json:"jobs" yaml:"jobs"`
	CacheSize int                       `json:"cache_size" yaml:"cache_size"`
	Languages map[string]LanguageConfig `json:"languages" yaml:"languages"`
}

// LanguageConfig describes one language. Preset seeds the marker lists; a
// list given explicitly (even empty) replaces the preset's list of that kind.
type LanguageConfig struct {
	Preset        string       `json:"preset,omitempty" yaml:"preset,omitempty"`
	Extensions    []string     `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	LineComments  []string     `json:"line_comments,omitempty" yaml:"line_comments,omitempty"`
	BlockComments []strip.Pair `json:"block_comments,omitempty" yaml:"block_comments,omitempty"`
	Quotes        []string     `json:"quotes,omitempty" yaml:"quotes,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	var cfg File
	applyDefaults(&cfg)
	return &cfg
}

// Load reads a YAML or JSON (by .json extension) config file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = "json"
	}
	cfg, err := Parse(b, format)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, schema-checks, defaults and validates a config document.
// format is "json" or "yaml".
func Parse(b []byte, format string) (*File, error) {
	var doc any
	var cfg File
	switch format {
	case "json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, err
		}
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return nil, err
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateSchema(doc any) error {
	// Round-trip through JSON so YAML scalars take their JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
}

func applyDefaults(cfg *File) {
	if cfg == nil {
		return
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.NumCPU()
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = lang.DefaultCacheSize
	}
	if cfg.Languages == nil {
		cfg.Languages = map[string]LanguageConfig{}
	}
}

func validateConfig(cfg *File) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", cfg.Version)
	}
	if cfg.Jobs < 1 {
		return fmt.Errorf("jobs must be >= 1, got %d", cfg.Jobs)
	}
	if cfg.CacheSize < 1 {
		return fmt.Errorf("cache_size must be >= 1, got %d", cfg.CacheSize)
	}
	for name, lc := range cfg.Languages {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("language name must not be empty")
		}
		if _, err := lc.Markers(); err != nil {
			return fmt.Errorf("languages.%s: %w", name, err)
		}
	}
	return nil
}

// Markers resolves the preset and explicit lists into a marker set.
func (lc LanguageConfig) Markers() (strip.Markers, error) {
	var m strip.Markers
	if p := strings.TrimSpace(lc.Preset); p != "" {
		preset, ok := strip.Preset(p)
		if !ok {
			return strip.Markers{}, fmt.Errorf("unknown preset %q (want one of: %s)", p, strings.Join(strip.PresetNames(), ", "))
		}
		m = preset
	}
	if lc.LineComments != nil {
		m.SingleLine = append([]string{}, lc.LineComments...)
	}
	if lc.BlockComments != nil {
		m.MultiLine = append([]strip.Pair{}, lc.BlockComments...)
	}
	if lc.Quotes != nil {
		m.Quotes = append([]string{}, lc.Quotes...)
	}
	if err := m.Validate(); err != nil {
		return strip.Markers{}, err
	}
	return m, nil
}

// Registry returns the built-in languages overlaid with the configured ones,
// registered in name order.
func (cfg *File) Registry() (*lang.Registry, error) {
	if cfg == nil {
		cfg = Default()
	}
	reg, err := lang.NewRegistry(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cfg.Languages))
	for name := range cfg.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lc := cfg.Languages[name]
		m, err := lc.Markers()
		if err != nil {
			return nil, fmt.Errorf("languages.%s: %w", name, err)
		}
		if err := reg.Register(lang.Language{Name: name, Extensions: lc.Extensions, Markers: m}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFromEnv loads the file named by path, falling back to
// $COMMENTSTRIP_CONFIG, and to Default when neither is set. A positive
// $COMMENTSTRIP_JOBS overrides the file's jobs.
func LoadFromEnv(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if raw := strings.TrimSpace(os.Getenv(EnvJobs)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s=%q: want a positive integer", EnvJobs, raw)
		}
		cfg.Jobs = n
	}
	return cfg, nil
}
