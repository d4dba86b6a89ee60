package felis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSchemaFile(t, "dp02.yaml", `
name: dp02_dc2_catalogs
version: "1.0.0"
tables:
  - name: Object
    columns:
      - name: objectId
        "@id": "#Object.objectId"
        datatype: long
        description: Unique id.
      - name: g_psfFlux
        datatype: double
        tap:principal: 1
`)

	schema, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dp02_dc2_catalogs", schema.Name)
	assert.Equal(t, "1.0.0", schema.Version)
	require.Len(t, schema.Tables, 1)

	table := schema.Tables[0]
	assert.Equal(t, "Object", table.Name)
	require.Len(t, table.Columns, 2)

	col := table.Columns[0]
	assert.Equal(t, "objectId", col.Name)
	assert.Equal(t, "long", col.StringProperty("datatype"))
	assert.Equal(t, "Unique id.", col.StringProperty("description"))

	// The file-level "@id" is dropped and a per-load id takes its place.
	assert.Nil(t, col.Property("@id"))
	assert.NotEmpty(t, col.StringProperty("id"))
}

func TestLoadGeneratesFreshIDs(t *testing.T) {
	path := writeSchemaFile(t, "schema.yaml", `
name: test_schema
tables:
  - name: Object
    columns:
      - name: objectId
        datatype: long
`)

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	a := first.Tables[0].Columns[0].StringProperty("id")
	b := second.Tables[0].Columns[0].StringProperty("id")
	assert.NotEqual(t, a, b)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing schema name",
			content: "tables: []\n",
			wantErr: "schema has no name",
		},
		{
			name: "missing table name",
			content: `
name: test_schema
tables:
  - columns: []
`,
			wantErr: "table has no name",
		},
		{
			name: "missing column name",
			content: `
name: test_schema
tables:
  - name: Object
    columns:
      - datatype: long
`,
			wantErr: "column has no name",
		},
		{
			name:    "invalid yaml",
			content: "name: [unclosed\n",
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSchemaFile(t, "bad.yaml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoadAll(t *testing.T) {
	a := writeSchemaFile(t, "a.yaml", "name: schema_a\ntables: []\n")
	b := writeSchemaFile(t, "b.yaml", "name: schema_b\ntables: []\n")

	schemas, err := LoadAll([]string{a, b})
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "schema_a", schemas[0].Name)
	assert.Equal(t, "schema_b", schemas[1].Name)
}

func TestLoadAllDuplicateName(t *testing.T) {
	a := writeSchemaFile(t, "a.yaml", "name: same\ntables: []\n")
	b := writeSchemaFile(t, "b.yaml", "name: same\ntables: []\n")

	_, err := LoadAll([]string{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate schema name "same"`)
	assert.Contains(t, err.Error(), a)
	assert.Contains(t, err.Error(), b)
}

func TestColumnPropertyHelpers(t *testing.T) {
	col := Column{
		Name: "g_psfFlux",
		Properties: map[string]any{
			"name":          "g_psfFlux",
			"datatype":      "double",
			"tap:principal": true,
			"votable:index": 3,
		},
	}

	assert.Equal(t, "double", col.StringProperty("datatype"))
	assert.Equal(t, "", col.StringProperty("missing"))
	assert.True(t, col.BoolProperty("tap:principal"))
	assert.False(t, col.BoolProperty("missing"))

	idx, ok := col.IntProperty("votable:index")
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
	_, ok = col.IntProperty("datatype")
	assert.False(t, ok)
}
