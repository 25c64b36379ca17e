package reader

import (
	"fmt"
	"os"

	"github.com/vitebski/dataset-validator/pkg/models"
	"gopkg.in/yaml.v3"
)

// SchemaFile is the on-disk description of a dataset's fields
type SchemaFile struct {
	Encoding  string                   `yaml:"encoding,omitempty"`
	Delimiter string                   `yaml:"delimiter,omitempty"`
	Fields    []models.FieldDescriptor `yaml:"fields"`
}

// LoadSchema reads and validates a YAML schema file.
func LoadSchema(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var schema SchemaFile
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	schema.applyDefaults()
	if err := schema.validate(); err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", path, err)
	}
	return &schema, nil
}

// WriteSchema stores a schema as YAML.
func WriteSchema(path string, schema *SchemaFile) error {
	if err := schema.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schema file: %w", err)
	}
	return nil
}

func (s *SchemaFile) applyDefaults() {
	for i := range s.Fields {
		if s.Fields[i].Length < 0 {
			s.Fields[i].Length = 0
		}
	}
}

func (s *SchemaFile) validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("no fields declared")
	}
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
	}
	if len([]rune(s.Delimiter)) > 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}
	return nil
}
