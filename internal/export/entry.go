package export

import (
	"path/filepath"
	"strings"
)

// Entry is one exported bookmark. Field order is the serialized key order.
type Entry struct {
	Title    string `yaml:"title"    json:"title"`
	URL      string `yaml:"url"      json:"url"`
	Date     string `yaml:"date"     json:"date"`
	Category string `yaml:"category" json:"category"`
}

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file path's extension.
// Unknown extensions fall back to YAML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}
