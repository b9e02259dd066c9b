package props

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/magiconair/properties"
)

// ParseProperties decodes properties-file text: key=value, key:value or
// "key value" lines, # and ! comments, backslash continuations and escapes.
// ${} references are kept verbatim.
func ParseProperties(input []byte) ([]Entry, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	parsed, err := loader.LoadBytes(input)
	if err != nil {
		return nil, fmt.Errorf("props: parse properties: %w", err)
	}
	keys := parsed.Keys()
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		value, _ := parsed.Get(key)
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries, nil
}

// FormatProperties writes entries in properties-file form, one per line in
// order, preceded by comment as # lines when it is not empty. Keys and
// values are escaped so ParseProperties reads back the same entries.
func FormatProperties(w io.Writer, entries []Entry, comment string) error {
	var buf bytes.Buffer
	if comment != "" {
		for _, line := range strings.Split(comment, "\n") {
			fmt.Fprintf(&buf, "# %s\n", line)
		}
	}
	for _, entry := range entries {
		buf.WriteString(escapeKey(entry.Key))
		buf.WriteString(" = ")
		buf.WriteString(escapeValue(entry.Value))
		buf.WriteByte('\n')
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("props: write properties: %w", err)
	}
	return nil
}

var controlEscapes = map[rune]string{
	'\\': `\\`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\f': `\f`,
}

// escapeKey escapes the runes that end a key, plus a leading comment marker.
func escapeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case controlEscapes[r] != "":
			b.WriteString(controlEscapes[r])
		case r == ' ' || r == ':' || r == '=':
			b.WriteByte('\\')
			b.WriteRune(r)
		case i == 0 && (r == '#' || r == '!'):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeValue keeps leading whitespace, which the parser would otherwise
// skip along with the separator.
func escapeValue(value string) string {
	var b strings.Builder
	leading := true
	for _, r := range value {
		if leading && r == ' ' {
			b.WriteString(`\ `)
			continue
		}
		leading = false
		if esc := controlEscapes[r]; esc != "" {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load reads properties text from src and merges it into the calling path's
// current scope.
func (r *Registry) Load(ctx context.Context, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("props: read properties: %w", err)
	}
	entries, err := ParseProperties(data)
	if err != nil {
		return err
	}
	r.resolve(ctx).Merge(entries...)
	return nil
}

// LoadString is Load for in-memory text.
func (r *Registry) LoadString(ctx context.Context, text string) error {
	return r.Load(ctx, strings.NewReader(text))
}

// Store writes the calling path's visible table to dst.
func (r *Registry) Store(ctx context.Context, dst io.Writer, comment string) error {
	return FormatProperties(dst, r.resolve(ctx).Entries(), comment)
}

// String renders the visible table as properties text.
func (r *Registry) String(ctx context.Context) string {
	var buf bytes.Buffer
	if err := r.Store(ctx, &buf, ""); err != nil {
		return ""
	}
	return buf.String()
}
