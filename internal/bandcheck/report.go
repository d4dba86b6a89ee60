package bandcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Report collects within-schema differences: schema -> table -> band ->
// remapped change sets for that band against the reference band.
type Report map[string]map[string]map[string][]map[string]any

// Add appends a change set for the given schema, table, and band.
func (r Report) Add(schema, table, band string, changes map[string]any) {
	tables, ok := r[schema]
	if !ok {
		tables = make(map[string]map[string][]map[string]any)
		r[schema] = tables
	}
	bands, ok := tables[table]
	if !ok {
		bands = make(map[string][]map[string]any)
		tables[table] = bands
	}
	bands[band] = append(bands[band], changes)
}

// Empty reports whether no differences were recorded.
func (r Report) Empty() bool {
	return len(r) == 0
}

// CrossReport collects cross-schema differences: table -> band ->
// remapped change sets for the comparison schema against the reference
// schema.
type CrossReport map[string]map[string][]map[string]any

// Add appends a change set for the given table and band.
func (r CrossReport) Add(table, band string, changes map[string]any) {
	bands, ok := r[table]
	if !ok {
		bands = make(map[string][]map[string]any)
		r[table] = bands
	}
	bands[band] = append(bands[band], changes)
}

// Empty reports whether no differences were recorded.
func (r CrossReport) Empty() bool {
	return len(r) == 0
}

// WriteJSON writes any report as indented JSON.
func WriteJSON(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteJSONFile writes any report as indented JSON to a file.
func WriteJSONFile(path string, report any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := WriteJSON(f, report); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
