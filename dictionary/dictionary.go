// Package dictionary holds the translation session: the ordered records of
// one mod language file, their translations, and the operations the editor
// performs on them.
//
// A Dictionary is owned by a single goroutine; it is not safe for
// concurrent use.
package dictionary

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/mclang/mclang/langfile"
	"github.com/mclang/mclang/langmeta"
	"github.com/mclang/mclang/merge"
)

var (
	ErrNoSource         = errors.New("no source file loaded")
	ErrNoEntries        = errors.New("no translation entries found")
	ErrUnknownKey       = errors.New("unknown key")
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// DefaultNamespace names exports when no namespace was given.
const DefaultNamespace = "mod"

// namespacePattern is the character set Minecraft allows in resource
// namespaces.
var namespacePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// ValidateNamespace checks a non-empty namespace against Minecraft's rules.
// The empty namespace is valid and falls back to DefaultNamespace.
func ValidateNamespace(ns string) error {
	if ns == "" || namespacePattern.MatchString(ns) {
		return nil
	}
	return fmt.Errorf("%w %q: only a-z, 0-9, '_', '.' and '-' are allowed", ErrInvalidNamespace, ns)
}

// Stats summarises translation progress.
type Stats struct {
	Total        int
	Translated   int
	Untranslated int
	Changed      int
}

// Percent returns the translated share in whole percent.
func (s Stats) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Translated * 100 / s.Total
}

// Dictionary is the in-memory session of translation records.
type Dictionary struct {
	namespace string
	locale    string

	// source keeps the parsed source layout for export.
	source  *langfile.File
	records []*Record
	index   map[string]int
}

// New creates an empty dictionary.
func New(namespace, locale string) *Dictionary {
	return &Dictionary{
		namespace: strings.TrimSpace(namespace),
		locale:    langmeta.Normalize(locale),
		index:     make(map[string]int),
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

func parse(name string, data []byte, opts langfile.ParseOptions) (*langfile.File, error) {
	format, err := langfile.DetectFormat(name, data)
	if err != nil {
		return nil, err
	}
	return langfile.Parse(format, data, opts)
}

// LoadSource parses a source language file and replaces all records.
// On error the previous state is kept.
func (d *Dictionary) LoadSource(name string, data []byte, opts langfile.ParseOptions) ([]langfile.Warning, error) {
	f, err := parse(name, data, opts)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	if f.Len() == 0 {
		return f.Warnings(), fmt.Errorf("loading source: %w", ErrNoEntries)
	}
	d.replace(f, nil)
	return f.Warnings(), nil
}

// ReloadSource parses a new version of the source file. Translations of
// keys that still exist are kept; records whose key disappeared are
// dropped and returned in removed.
func (d *Dictionary) ReloadSource(name string, data []byte, opts langfile.ParseOptions) (removed []string, warnings []langfile.Warning, err error) {
	if d.source == nil {
		warnings, err = d.LoadSource(name, data, opts)
		return nil, warnings, err
	}

	f, err := parse(name, data, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("reloading source: %w", err)
	}
	if f.Len() == 0 {
		return nil, f.Warnings(), fmt.Errorf("reloading source: %w", ErrNoEntries)
	}

	removed = merge.Obsolete(d.Keys(), f.Keys())
	prev := make(map[string]*Record, len(d.records))
	for _, r := range d.records {
		prev[r.Key] = r
	}
	d.replace(f, prev)
	return removed, f.Warnings(), nil
}

// replace rebuilds records from f, carrying translations over from prev.
func (d *Dictionary) replace(f *langfile.File, prev map[string]*Record) {
	keys := f.Keys()
	records := make([]*Record, 0, len(keys))
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		src, _ := f.Get(k)
		r := &Record{Key: k, Source: src}
		if old, ok := prev[k]; ok {
			r.Translation = old.Translation
			r.changed = old.changed
		}
		records = append(records, r)
		index[k] = i
	}
	d.source = f
	d.records = records
	d.index = index
}

// LoadTranslation applies an existing translated file. Only keys present
// in the source are filled; the rest are reported in the result.
func (d *Dictionary) LoadTranslation(name string, data []byte, opts langfile.ParseOptions) (merge.Result, []langfile.Warning, error) {
	if d.source == nil {
		return merge.Result{}, nil, ErrNoSource
	}
	f, err := parse(name, data, opts)
	if err != nil {
		return merge.Result{}, nil, fmt.Errorf("loading translation: %w", err)
	}

	res := merge.Match(d.Keys(), f)
	for k, v := range res.Translations {
		d.records[d.index[k]].SetTranslation(v)
	}
	return res, f.Warnings(), nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Loaded reports whether a source file has been loaded.
func (d *Dictionary) Loaded() bool { return d.source != nil }

// Format returns the source file format.
func (d *Dictionary) Format() langfile.Format {
	if d.source == nil {
		return langfile.FormatUnknown
	}
	return d.source.Format()
}

// Namespace returns the configured mod namespace (may be empty).
func (d *Dictionary) Namespace() string { return d.namespace }

// SetNamespace changes the mod namespace.
func (d *Dictionary) SetNamespace(ns string) { d.namespace = strings.TrimSpace(ns) }

// Locale returns the target locale, DefaultLocale when unset.
func (d *Dictionary) Locale() string {
	if d.locale == "" {
		return langmeta.DefaultLocale
	}
	return d.locale
}

// Len returns the number of records.
func (d *Dictionary) Len() int { return len(d.records) }

// At returns the record at position i.
func (d *Dictionary) At(i int) *Record { return d.records[i] }

// Records returns all records in source order.
func (d *Dictionary) Records() []*Record { return d.records }

// Keys returns all keys in source order.
func (d *Dictionary) Keys() []string {
	return lo.Map(d.records, func(r *Record, _ int) string { return r.Key })
}

// UntranslatedKeys returns keys without a translation, in source order.
func (d *Dictionary) UntranslatedKeys() []string {
	return lo.FilterMap(d.records, func(r *Record, _ int) (string, bool) {
		return r.Key, !r.IsTranslated()
	})
}

// Get returns the record for key.
func (d *Dictionary) Get(key string) (*Record, bool) {
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.records[i], true
}

// IndexOf returns the position of key, or -1.
func (d *Dictionary) IndexOf(key string) int {
	if i, ok := d.index[key]; ok {
		return i
	}
	return -1
}

// ---------------------------------------------------------------------------
// Editing
// ---------------------------------------------------------------------------

// Set stores a translation for key.
func (d *Dictionary) Set(key, text string) error {
	r, ok := d.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	r.SetTranslation(text)
	return nil
}

// Reset clears the translation for key.
func (d *Dictionary) Reset(key string) error {
	r, ok := d.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	r.Reset()
	return nil
}

// NextUntranslated returns the first untranslated record after position
// from, wrapping around to the start. from may be -1 to scan everything.
func (d *Dictionary) NextUntranslated(from int) (int, bool) {
	n := len(d.records)
	for i := 1; i <= n; i++ {
		j := ((from+i)%n + n) % n
		if j == from {
			break
		}
		if !d.records[j].IsTranslated() {
			return j, true
		}
	}
	return -1, false
}

// ClearDuplicates resets translations that are identical to the source
// text. Returns the number of records cleared.
func (d *Dictionary) ClearDuplicates() int {
	count := 0
	for _, r := range d.records {
		if r.IsTranslated() && r.Translation == r.Source {
			r.Reset()
			count++
		}
	}
	return count
}

// FillEmpty copies the source text into every untranslated record.
// Returns the number of records filled.
func (d *Dictionary) FillEmpty() int {
	count := 0
	for _, r := range d.records {
		if !r.IsTranslated() && r.Source != "" {
			r.SetTranslation(r.Source)
			count++
		}
	}
	return count
}

// Stats returns translation progress counters.
func (d *Dictionary) Stats() Stats {
	translated := lo.CountBy(d.records, func(r *Record) bool { return r.IsTranslated() })
	return Stats{
		Total:        len(d.records),
		Translated:   translated,
		Untranslated: len(d.records) - translated,
		Changed:      lo.CountBy(d.records, func(r *Record) bool { return r.changed }),
	}
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Export serialises the records in the source format and key order,
// substituting translations where present.
func (d *Dictionary) Export() ([]byte, error) {
	out, err := d.output()
	if err != nil {
		return nil, err
	}
	return out.Marshal()
}

// WriteFile exports to path, creating parent directories. Records are
// marked saved only when the write succeeds.
func (d *Dictionary) WriteFile(path string) error {
	out, err := d.output()
	if err != nil {
		return err
	}
	if err := out.WriteFile(path); err != nil {
		return err
	}
	d.MarkSaved()
	return nil
}

func (d *Dictionary) output() (*langfile.File, error) {
	if d.source == nil {
		return nil, ErrNoSource
	}
	out := d.source.Clone()
	for _, r := range d.records {
		out.Set(r.Key, r.Output())
	}
	return out, nil
}

// ExportName returns the default export file name
// <namespace>_<locale><ext>, e.g. "mymod_zh_cn.json".
func (d *Dictionary) ExportName() (string, error) {
	if d.source == nil {
		return "", ErrNoSource
	}
	if err := ValidateNamespace(d.namespace); err != nil {
		return "", err
	}
	ns := d.namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return ns + "_" + d.Locale() + d.Format().Ext(), nil
}

// MarkSaved clears the changed mark on every record after a successful
// export.
func (d *Dictionary) MarkSaved() {
	for _, r := range d.records {
		r.changed = false
	}
}
