// Package langfile implements reading and writing of Minecraft mod language
// files in both supported formats:
//
//	assets/<namespace>/lang/en_US.lang   (legacy, key=value per line)
//	assets/<namespace>/lang/en_us.json   (flat JSON object, 1.13+)
//
// Both formats share one File model: an ordered list of entries plus, for
// .lang files, the comment and blank lines that surround them so that a
// round trip reproduces the source layout with substituted values.
package langfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a language file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatLang
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatLang:
		return "lang"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatLang:
		return ".lang"
	case FormatJSON:
		return ".json"
	}
	return ""
}

var (
	ErrEmpty         = errors.New("file is empty")
	ErrUnknownFormat = errors.New("unrecognized language file format")
	ErrInvalidJSON   = errors.New("invalid JSON")
	ErrMalformed     = errors.New("malformed entry")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

// DetectFormat picks the format from the file name extension, falling back
// to content sniffing: a leading '{' means JSON, any key=value line means
// .lang.
func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lang":
		return FormatLang, nil
	case ".json":
		return FormatJSON, nil
	}

	text := bytes.TrimSpace(stripBOM(data))
	if len(text) == 0 {
		return FormatUnknown, ErrEmpty
	}
	if text[0] == '{' {
		return FormatJSON, nil
	}

	for _, raw := range strings.Split(string(text), "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || isComment(trimmed) {
			continue
		}
		if k, _, ok := strings.Cut(trimmed, "="); ok && strings.TrimSpace(k) != "" {
			return FormatLang, nil
		}
	}
	return FormatUnknown, ErrUnknownFormat
}

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Warning describes an entry that was skipped while parsing.
type Warning struct {
	Line   int    // 1-based line number, 0 when unknown
	Text   string // offending line or key
	Reason string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", w.Line, w.Reason, w.Text)
	}
	return fmt.Sprintf("%s: %q", w.Reason, w.Text)
}

// lineKind classifies each line of a .lang file.
type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineEntry
)

// line is one element of the document. JSON files only hold entries.
type line struct {
	kind  lineKind
	raw   string // verbatim text for blank/comment lines
	key   string
	value string
}

// File represents a parsed language file.
type File struct {
	format   Format
	lines    []line
	index    map[string]int // key → index in lines
	warnings []Warning
}

// ParseOptions controls how malformed entries are handled.
type ParseOptions struct {
	// Strict aborts on the first malformed entry instead of skipping it.
	Strict bool
}

// New returns an empty file of the given format.
func New(format Format) *File {
	return &File{format: format, index: make(map[string]int)}
}

// ParseFile reads path, detects its format and parses it.
func ParseFile(path string, opts ParseOptions) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	format, err := DetectFormat(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f, err := Parse(format, data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses data in the given format.
func Parse(format Format, data []byte, opts ParseOptions) (*File, error) {
	data = stripBOM(data)
	switch format {
	case FormatLang:
		return parseLang(data, opts)
	case FormatJSON:
		return parseJSON(data, opts)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// warn records a skipped entry, or fails in strict mode.
func (f *File) warn(opts ParseOptions, w Warning) error {
	if opts.Strict {
		return fmt.Errorf("%w: %s", ErrMalformed, w)
	}
	f.warnings = append(f.warnings, w)
	return nil
}

// add appends an entry unless the key is already present.
func (f *File) add(opts ParseOptions, lineNo int, key, value string) error {
	if _, dup := f.index[key]; dup {
		return f.warn(opts, Warning{Line: lineNo, Text: key, Reason: "duplicate key"})
	}
	f.index[key] = len(f.lines)
	f.lines = append(f.lines, line{kind: lineEntry, key: key, value: value})
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Format returns the file format.
func (f *File) Format() Format { return f.format }

// Warnings returns the entries skipped during parsing.
func (f *File) Warnings() []Warning { return f.warnings }

// Len returns the number of entries.
func (f *File) Len() int { return len(f.index) }

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	for _, ln := range f.lines {
		if ln.kind == lineEntry {
			keys = append(keys, ln.key)
		}
	}
	return keys
}

// Get returns the value for key and whether it was found.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok {
		return f.lines[idx].value, true
	}
	return "", false
}

// Set sets the value for an existing key. Returns false if the key does
// not exist.
func (f *File) Set(key, value string) bool {
	idx, ok := f.index[key]
	if !ok {
		return false
	}
	f.lines[idx].value = value
	return true
}

// Append adds a new entry at the end of the file. Returns false if the key
// already exists.
func (f *File) Append(key, value string) bool {
	if _, ok := f.index[key]; ok {
		return false
	}
	f.index[key] = len(f.lines)
	f.lines = append(f.lines, line{kind: lineEntry, key: key, value: value})
	return true
}

// Clone returns a deep copy of the file without its warnings.
func (f *File) Clone() *File {
	cp := &File{
		format: f.format,
		lines:  make([]line, len(f.lines)),
		index:  make(map[string]int, len(f.index)),
	}
	copy(cp.lines, f.lines)
	for k, v := range f.index {
		cp.index[k] = v
	}
	return cp
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the file in its own format.
func (f *File) Marshal() ([]byte, error) {
	switch f.format {
	case FormatLang:
		return f.marshalLang(), nil
	case FormatJSON:
		return f.marshalJSON()
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f.format)
}

// WriteFile serialises and writes to path, creating parent directories.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
