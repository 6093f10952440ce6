package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Encode writes entries to w in the given format.
func Encode(w io.Writer, format Format, entries []Entry) error {
	switch format {
	case FormatJSON:
		return EncodeJSON(w, entries)
	case FormatYAML:
		return EncodeYAML(w, entries)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// EncodeYAML writes entries as a block-style YAML sequence.
// An empty list is written as [].
func EncodeYAML(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return nil
}

// EncodeJSON writes entries as an indented JSON array without HTML escaping.
func EncodeJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}
