package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatTOML  Format = "toml"
	FormatHTML  Format = "html"
)

// Formats lists the accepted -o values.
var Formats = []Format{FormatTable, FormatYAML, FormatJSON, FormatTOML, FormatHTML}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q: valid values are table, yaml, json, toml, html", s)
}

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent              int
	LiteralBlockStrings bool
}

// FormatYAML renders an object to YAML. Multi-line strings can be emitted as
// literal blocks ("|") to preserve newlines in document notes.
func FormatYAML(v any, opts YAMLFormatOptions) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}
	if opts.LiteralBlockStrings {
		applyLiteralStyle(&node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func applyLiteralStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}

// Export encodes v as YAML, JSON or TOML. TOML has no top-level arrays, so
// the value is nested under key (e.g. [[documents]]).
func Export(v any, format Format, key string) (string, error) {
	switch format {
	case FormatYAML:
		return FormatYAML(v, YAMLFormatOptions{LiteralBlockStrings: true})
	case FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(b) + "\n", nil
	case FormatTOML:
		return formatTOML(v, key)
	default:
		return "", fmt.Errorf("format %q cannot be exported", format)
	}
}

// formatTOML goes through the JSON form of v so that the json tags decide
// the key names and nulls are dropped (TOML has no null).
func formatTOML(v any, key string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode toml: %w", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return "", fmt.Errorf("encode toml: %w", err)
	}
	generic = dropNulls(generic)

	doc, ok := generic.(map[string]any)
	if !ok || key != "" {
		if key == "" {
			key = "items"
		}
		doc = map[string]any{key: generic}
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode toml: %w", err)
	}
	return string(out), nil
}

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = dropNulls(val)
		}
		return t
	default:
		return v
	}
}
