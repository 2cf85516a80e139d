package dictionary

// Record is one key's source/translation pair.
type Record struct {
	Key         string
	Source      string
	Translation string

	changed bool
}

// IsTranslated reports whether the record has a non-empty translation.
func (r *Record) IsTranslated() bool {
	return r.Translation != ""
}

// IsChanged reports whether the translation was edited in this session.
func (r *Record) IsChanged() bool {
	return r.changed
}

// SetTranslation replaces the translation and marks the record changed
// when the text differs from the current one.
func (r *Record) SetTranslation(text string) {
	if text != r.Translation {
		r.Translation = text
		r.changed = true
	}
}

// Reset clears the translation and the changed mark.
func (r *Record) Reset() {
	r.Translation = ""
	r.changed = false
}

// Output is the text written on export: the translation when present,
// the source text otherwise.
func (r *Record) Output() string {
	if r.IsTranslated() {
		return r.Translation
	}
	return r.Source
}

// Label returns the source text cut to width runes with a trailing
// ellipsis, for list display. Newlines are flattened.
func (r *Record) Label(width int) string {
	runes := []rune(r.Source)
	for i, c := range runes {
		if c == '\n' || c == '\r' {
			runes[i] = ' '
		}
	}
	if width <= 0 || len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width]) + "..."
}
