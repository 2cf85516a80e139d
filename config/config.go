// Package config loads .mclang.yaml configuration files.
//
// Settings are resolved in this order (later wins):
//
//  1. built-in defaults
//  2. .mclang.yaml in the working directory (or --config)
//  3. MCLANG_* variables from a .env file next to it
//  4. MCLANG_* variables from the process environment
//  5. command-line flags (applied by the caller)
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mclang/mclang/dictionary"
	"github.com/mclang/mclang/langmeta"
)

// FileName is the default config file name.
const FileName = ".mclang.yaml"

// EnvFileName is the optional dotenv file read alongside the config.
const EnvFileName = ".env"

// DefaultLabelWidth is how many characters of the source text the entry
// list shows.
const DefaultLabelWidth = 30

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .mclang.yaml structure.
type Config struct {
	// Namespace is the mod namespace used to name exports (default "mod").
	Namespace string `yaml:"namespace,omitempty"`
	// Locale is the target Minecraft locale (default "zh_cn").
	Locale string `yaml:"locale,omitempty"`
	// OutputDir is where exports and mclang.lock are written (default ".").
	OutputDir string `yaml:"output_dir,omitempty"`
	// Strict aborts loading on the first malformed entry.
	Strict bool `yaml:"strict,omitempty"`
	// LabelWidth is the source preview width in entry lists.
	LabelWidth int `yaml:"label_width,omitempty"`
	// UILang overrides the language of mclang's own messages.
	UILang string `yaml:"ui_lang,omitempty"`
	// Markers overrides the glyphs shown for record states.
	Markers Markers `yaml:"markers,omitempty"`

	// path is the file the config was loaded from, empty for defaults.
	path string
}

// Markers are the status glyphs of the entry list. An empty glyph makes
// the editor fall back to plain-text markers.
type Markers struct {
	Translated   string `yaml:"translated,omitempty"`
	Untranslated string `yaml:"untranslated,omitempty"`
	Stale        string `yaml:"stale,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Locale:     langmeta.DefaultLocale,
		OutputDir:  ".",
		LabelWidth: DefaultLabelWidth,
		Markers: Markers{
			Translated:   "✔",
			Untranslated: "○",
			Stale:        "↻",
		},
	}
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads dir/.mclang.yaml (if present) and the environment.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the config at path on top of the defaults. A missing
// file is not an error. Environment overrides and validation are applied.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.path = path
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	dotenv, err := readDotenv(filepath.Join(filepath.Dir(path), EnvFileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(dotenv); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		if cfg.path != "" {
			return nil, fmt.Errorf("%s: %w", cfg.path, err)
		}
		return nil, err
	}
	return cfg, nil
}

// decodeStrict decodes YAML rejecting unknown keys. An empty document
// leaves cfg untouched.
func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// readDotenv returns the variables of an optional .env file without
// exporting them into the process environment.
func readDotenv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

// applyEnv overrides fields from MCLANG_* variables. The process
// environment takes precedence over the .env file.
func (c *Config) applyEnv(dotenv map[string]string) error {
	get := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	if v, ok := get("MCLANG_NAMESPACE"); ok {
		c.Namespace = v
	}
	if v, ok := get("MCLANG_LOCALE"); ok {
		c.Locale = v
	}
	if v, ok := get("MCLANG_OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := get("MCLANG_UI_LANG"); ok {
		c.UILang = v
	}
	if v, ok := get("MCLANG_STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MCLANG_STRICT: %w", err)
		}
		c.Strict = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Locale = langmeta.Normalize(c.Locale)
	if c.Locale == "" {
		c.Locale = langmeta.DefaultLocale
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.LabelWidth == 0 {
		c.LabelWidth = DefaultLabelWidth
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := dictionary.ValidateNamespace(c.Namespace); err != nil {
		return err
	}
	if c.LabelWidth < 0 {
		return fmt.Errorf("label_width must not be negative, got %d", c.LabelWidth)
	}
	return nil
}
