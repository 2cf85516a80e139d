package langfile

import (
	"bytes"
	"strings"
)

// isComment reports whether a trimmed .lang line is a comment.
func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

func parseLang(data []byte, opts ParseOptions) (*File, error) {
	f := New(FormatLang)

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	rawLines := strings.Split(text, "\n")

	// Drop trailing empty element from a file that ends with \n.
	if len(rawLines) > 0 && rawLines[len(rawLines)-1] == "" {
		rawLines = rawLines[:len(rawLines)-1]
	}

	for i, raw := range rawLines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)

		switch {
		case trimmed == "":
			f.lines = append(f.lines, line{kind: lineBlank})

		case isComment(trimmed):
			f.lines = append(f.lines, line{kind: lineComment, raw: raw})

		default:
			k, v, ok := strings.Cut(trimmed, "=")
			k = strings.TrimSpace(k)
			if !ok {
				if err := f.warn(opts, Warning{Line: lineNo, Text: raw, Reason: "missing '='"}); err != nil {
					return nil, err
				}
				continue
			}
			if k == "" {
				if err := f.warn(opts, Warning{Line: lineNo, Text: raw, Reason: "empty key"}); err != nil {
					return nil, err
				}
				continue
			}
			if err := f.add(opts, lineNo, k, strings.TrimSpace(v)); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func (f *File) marshalLang() []byte {
	var buf bytes.Buffer
	for _, ln := range f.lines {
		switch ln.kind {
		case lineBlank:
			buf.WriteByte('\n')
		case lineComment:
			buf.WriteString(ln.raw)
			buf.WriteByte('\n')
		case lineEntry:
			buf.WriteString(ln.key)
			buf.WriteByte('=')
			// .lang has no multi-line values; embedded newlines are
			// written as the two-character escape.
			buf.WriteString(strings.ReplaceAll(ln.value, "\n", `\n`))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}
