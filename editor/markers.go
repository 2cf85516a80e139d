package editor

import (
	"github.com/fatih/color"
)

// Markers are the status glyphs shown next to each entry.
type Markers struct {
	Translated   string
	Untranslated string
	Stale        string
}

// PlainMarkers are used when colour output is off or a glyph is missing.
var PlainMarkers = Markers{
	Translated:   "[x]",
	Untranslated: "[ ]",
	Stale:        "[~]",
}

// complete reports whether every glyph is set.
func (m Markers) complete() bool {
	return m.Translated != "" && m.Untranslated != "" && m.Stale != ""
}

// markerSet is the rendered form of Markers.
type markerSet struct {
	translated   string
	untranslated string
	stale        string
}

// newMarkerSet renders glyphs in colour. Without colour, or when the
// configured set is incomplete, the plain text markers are used.
func newMarkerSet(m Markers, colorful bool) markerSet {
	if !colorful || !m.complete() {
		return markerSet{
			translated:   PlainMarkers.Translated,
			untranslated: PlainMarkers.Untranslated,
			stale:        PlainMarkers.Stale,
		}
	}
	paint := func(attr color.Attribute, s string) string {
		c := color.New(attr)
		c.EnableColor()
		return c.Sprint(s)
	}
	return markerSet{
		translated:   paint(color.FgGreen, m.Translated),
		untranslated: paint(color.FgYellow, m.Untranslated),
		stale:        paint(color.FgMagenta, m.Stale),
	}
}
