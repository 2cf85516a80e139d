package langfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

func parseJSON(data []byte, opts ParseOptions) (*File, error) {
	f := New(FormatJSON)

	// Token streaming preserves key order, which map decoding would lose.
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected '{', got %v", ErrInvalidJSON, tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string key, got %T", ErrInvalidJSON, keyTok)
		}
		lineNo := lineAt(data, dec.InputOffset())

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrInvalidJSON, key, err)
		}

		if len(raw) == 0 || raw[0] != '"' {
			if err := f.warn(opts, Warning{Line: lineNo, Text: key, Reason: "non-string value"}); err != nil {
				return nil, err
			}
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrInvalidJSON, key, err)
		}
		if err := f.add(opts, lineNo, key, value); err != nil {
			return nil, err
		}
	}

	// Closing brace, then nothing but whitespace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidJSON)
	}

	return f, nil
}

// lineAt returns the 1-based line containing offset.
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}

// marshalJSON writes a 4-space indented object in key order. Non-ASCII
// text is kept as UTF-8 and HTML characters are not escaped, matching what
// Minecraft resource packs ship.
func (f *File) marshalJSON() ([]byte, error) {
	keys := f.Keys()
	if len(keys) == 0 {
		return []byte("{}\n"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range keys {
		v, _ := f.Get(k)
		ks, err := jsonString(k)
		if err != nil {
			return nil, err
		}
		vs, err := jsonString(v)
		if err != nil {
			return nil, err
		}
		b.WriteString("    ")
		b.Write(ks)
		b.WriteString(": ")
		b.Write(vs)
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.Bytes(), nil
}

// jsonString returns s as a JSON string literal without HTML escaping.
func jsonString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding %q: %w", s, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
