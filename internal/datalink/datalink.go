// Package datalink builds DataLink metadata from Felis schemas.
//
// Currently this only determines principal column names (tap:principal);
// once additional keys land in the Felis inputs it will cover other
// column lists as well.
package datalink

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lsst/sdm-tools/internal/felis"
)

// principalKey is the Felis column property marking principal columns.
const principalKey = "tap:principal"

// columnIndexKey is the Felis column property giving explicit TAP
// column ordering.
const columnIndexKey = "tap:column_index"

// FilterColumns returns the names of a table's columns carrying the
// given property, respecting the TAP v1.1 ordering convention: columns
// without tap:column_index sort after all those with it, in the order
// they appeared in the schema file.
func FilterColumns(table felis.Table, filterKey string) []string {
	type entry struct {
		name  string
		index int
	}
	unknownIndex := 100000000
	var selected []entry
	for _, column := range table.Columns {
		if !columnFlag(column, filterKey) {
			continue
		}
		index, ok := column.IntProperty(columnIndexKey)
		if !ok {
			index = unknownIndex
			unknownIndex++
		}
		selected = append(selected, entry{name: column.Name, index: index})
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].index < selected[j].index })

	names := make([]string, 0, len(selected))
	for _, e := range selected {
		names = append(names, e.name)
	}
	return names
}

// columnFlag interprets a truthy Felis flag property (bool or int forms
// both occur in the wild).
func columnFlag(column felis.Column, key string) bool {
	switch v := column.Property(key).(type) {
	case bool:
		return v
	case int:
		return v != 0
	default:
		return false
	}
}

// BuildColumns maps qualified table names to their filtered column
// lists for every table of every schema:
// {"schema.table": {"tap:principal": ["col1", "col2"]}}.
func BuildColumns(schemas []*felis.Schema, columnProperties []string) map[string]map[string][]string {
	output := make(map[string]map[string][]string)
	for _, schema := range schemas {
		for _, table := range schema.Tables {
			fullName := schema.Name + "." + table.Name
			props := make(map[string][]string, len(columnProperties))
			for _, p := range columnProperties {
				props[p] = FilterColumns(table, p)
			}
			output[fullName] = props
		}
	}
	return output
}

// WriteMetadata writes the principal-column metadata for the schemas as
// YAML: {tables: {"schema.table": {"tap:principal": [...]}}}.
func WriteMetadata(w io.Writer, schemas []*felis.Schema) error {
	doc := map[string]any{
		"tables": BuildColumns(schemas, []string{principalKey}),
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal datalink metadata: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write datalink metadata: %w", err)
	}
	return nil
}

// WriteMetadataFile writes the principal-column metadata to a file.
func WriteMetadataFile(path string, schemas []*felis.Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteMetadata(f, schemas)
}

// PackageZips bundles the datalink artifacts: columns-*.yaml files from
// resourceDir go into datalink-columns.zip, and *.json / *.xml snippet
// files go into datalink-snippets.zip, both written under zipDir.
func PackageZips(resourceDir, zipDir string) error {
	columnsZip := filepath.Join(zipDir, "datalink-columns.zip")
	if err := writeZip(columnsZip, resourceDir, []string{"columns-*.yaml"}); err != nil {
		return err
	}
	snippetsZip := filepath.Join(zipDir, "datalink-snippets.zip")
	return writeZip(snippetsZip, resourceDir, []string{"*.json", "*.xml"})
}

// writeZip creates a zip archive holding every file in dir matching one
// of the glob patterns, stored under its base name.
func writeZip(zipPath, dir string, patterns []string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", zipPath, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if err := addZipEntry(zw, match); err != nil {
				return err
			}
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", zipPath, err)
	}
	return nil
}

func addZipEntry(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s into archive: %w", path, err)
	}
	return nil
}
