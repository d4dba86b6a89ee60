// Package felis loads Felis YAML schema files into an in-memory model.
//
// Only the parts of the Felis data model that the band-column tooling
// needs are represented: a schema is an ordered list of tables, a table
// is an ordered list of columns, and a column keeps its full property
// mapping so that schema-specific extension properties survive loading.
package felis

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Schema is one loaded schema file.
type Schema struct {
	Name    string
	Version string
	Tables  []Table
}

// Table is a named, ordered collection of columns. Column order is
// semantically significant: it is the tie-break for columns without an
// explicit display-order property.
type Table struct {
	Name    string
	Columns []Column
}

// Column is an open-ended property mapping. Properties always contains
// "name" and "id"; the id is regenerated on every load and is never
// meaningfully equal across two loads of the same file.
type Column struct {
	Name       string
	Properties map[string]any
}

// Property returns the named property, or nil if unset.
func (c Column) Property(key string) any {
	return c.Properties[key]
}

// StringProperty returns the named property as a string, or "" if the
// property is unset or not a string.
func (c Column) StringProperty(key string) string {
	s, _ := c.Properties[key].(string)
	return s
}

// BoolProperty returns the named property as a bool, or false if the
// property is unset or not a bool.
func (c Column) BoolProperty(key string) bool {
	b, _ := c.Properties[key].(bool)
	return b
}

// IntProperty returns the named property as an int and whether it was set.
func (c Column) IntProperty(key string) (int, bool) {
	switch v := c.Properties[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// Raw YAML document shapes. Column properties are kept as open mappings
// so unknown Felis keys pass through untouched.
type schemaDoc struct {
	Name    string     `yaml:"name"`
	Version any        `yaml:"version"`
	Tables  []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name    string           `yaml:"name"`
	Columns []map[string]any `yaml:"columns"`
}

// Load reads and parses a single schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc schemaDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("parse %s: schema has no name", path)
	}

	schema := &Schema{Name: doc.Name}
	if v, ok := doc.Version.(string); ok {
		schema.Version = v
	}

	for _, t := range doc.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("parse %s: table has no name", path)
		}
		table := Table{Name: t.Name}
		for _, props := range t.Columns {
			col, err := newColumn(props)
			if err != nil {
				return nil, fmt.Errorf("parse %s: table %q: %w", path, t.Name, err)
			}
			table.Columns = append(table.Columns, col)
		}
		schema.Tables = append(schema.Tables, table)
	}

	return schema, nil
}

// newColumn copies the raw property mapping, replacing the file-level
// "@id" with a freshly generated per-load identifier.
func newColumn(raw map[string]any) (Column, error) {
	name, _ := raw["name"].(string)
	if name == "" {
		return Column{}, fmt.Errorf("column has no name")
	}

	props := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		if k == "@id" {
			continue
		}
		props[k] = v
	}
	props["id"] = uuid.NewString()

	return Column{Name: name, Properties: props}, nil
}

// LoadAll loads several schema files in order. Two files declaring the
// same schema name is a fatal error.
func LoadAll(paths []string) ([]*Schema, error) {
	schemas := make([]*Schema, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		schema, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[schema.Name]; ok {
			return nil, fmt.Errorf("duplicate schema name %q (in %s and %s)", schema.Name, prev, path)
		}
		seen[schema.Name] = path
		schemas = append(schemas, schema)
	}
	return schemas, nil
}
