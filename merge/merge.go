// Package merge matches translated language files against the source
// file's keys, the way msgmerge matches a PO file against its template:
// the source decides which keys exist, the translation only fills values.
package merge

import (
	"github.com/samber/lo"

	"github.com/mclang/mclang/langfile"
)

// Result describes how a translated file lines up with the source keys.
type Result struct {
	// Translations maps source key → translated value for every key
	// present in both files.
	Translations map[string]string
	// Matched is len(Translations).
	Matched int
	// Unmatched lists keys of the translated file that the source does
	// not have, in translated-file order. They are ignored.
	Unmatched []string
	// Missing lists source keys absent from the translated file, in
	// source order.
	Missing []string
}

// Match applies the source key set to a translated file.
// - Keys present in both are carried over with the translated value.
// - Keys only in the translation are reported as unmatched and dropped.
// - Keys only in the source are reported as missing.
func Match(sourceKeys []string, translated *langfile.File) Result {
	inSource := make(map[string]bool, len(sourceKeys))
	for _, k := range sourceKeys {
		inSource[k] = true
	}

	res := Result{Translations: make(map[string]string)}
	for _, k := range translated.Keys() {
		if !inSource[k] {
			res.Unmatched = append(res.Unmatched, k)
			continue
		}
		v, _ := translated.Get(k)
		res.Translations[k] = v
	}
	res.Matched = len(res.Translations)

	res.Missing = lo.Filter(sourceKeys, func(k string, _ int) bool {
		_, ok := translated.Get(k)
		return !ok
	})

	return res
}

// Obsolete returns the keys of prev that no longer exist in next,
// preserving prev's order. Used when a source file is reloaded.
func Obsolete(prev, next []string) []string {
	return lo.Without(prev, next...)
}
