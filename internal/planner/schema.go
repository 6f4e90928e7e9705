package planner

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var schemasYAML []byte

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Schema describes the expected response shape for one generation stage.
type Schema struct {
	Name        string `yaml:"-"`
	Format      string `yaml:"format"`
	Description string `yaml:"description"`
	Example     string `yaml:"example"`
}

// Schemas is the registry loaded from the embedded schemas.yaml.
var Schemas = mustLoadSchemas(schemasYAML)

// SchemaFor returns the schema registered under name ("distribution" or a
// gear kind).
func SchemaFor(name string) (Schema, error) {
	s, ok := Schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("no schema registered for %q", name)
	}
	return s, nil
}

func mustLoadSchemas(data []byte) map[string]Schema {
	schemas, err := loadSchemas(data)
	if err != nil {
		panic(err)
	}
	return schemas
}

func loadSchemas(data []byte) (map[string]Schema, error) {
	var raw map[string]Schema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode schemas: %w", err)
	}

	out := make(map[string]Schema, len(raw))
	for name, s := range raw {
		s.Name = name
		s.Description = strings.TrimSpace(s.Description)
		switch s.Format {
		case FormatJSON:
			var buf bytes.Buffer
			if err := json.Indent(&buf, []byte(compactJSON(s.Example)), "", "  "); err != nil {
				return nil, fmt.Errorf("schema %q: example is not valid JSON: %w", name, err)
			}
			s.Example = buf.String()
		case FormatText:
			s.Example = strings.TrimSpace(s.Example)
		default:
			return nil, fmt.Errorf("schema %q: unknown format %q", name, s.Format)
		}
		out[name] = s
	}
	return out, nil
}

func compactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// Apply appends the response contract to prompt, verbatim, so the backend
// sees the description and a worked example.
func (s Schema) Apply(prompt string) string {
	header := "Respond ONLY in strict JSON format as follows:"
	if s.Format == FormatText {
		header = "Respond ONLY in plain text as follows:"
	}
	return fmt.Sprintf("%s\n\n%s\n%s\nExample:\n%s", prompt, header, s.Description, s.Example)
}
