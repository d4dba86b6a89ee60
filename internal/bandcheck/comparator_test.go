package bandcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsst/sdm-tools/internal/felis"
	"github.com/lsst/sdm-tools/internal/logging"
)

func newTestComparator(t *testing.T, schemas []*felis.Schema, opts Options) *Comparator {
	t.Helper()
	opts.Logger = logging.NewDiscard()
	comparator, err := NewComparator(schemas, opts)
	require.NoError(t, err)
	return comparator
}

func TestComparatorRequiresTwoSchemas(t *testing.T) {
	_, err := NewComparator([]*felis.Schema{consistentSchema()}, Options{Logger: logging.NewDiscard()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2 schemas")
}

func TestComparatorIdenticalSchemas(t *testing.T) {
	reference := consistentSchema()
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"

	comparator := newTestComparator(t, []*felis.Schema{reference, comparison}, Options{})
	report, err := comparator.Run()
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestComparatorValueChanged(t *testing.T) {
	reference := consistentSchema()
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"
	for i, col := range comparison.Tables[0].Columns {
		if col.Name == "g_psfFlux" {
			comparison.Tables[0].Columns[i].Properties["unit"] = "Jy"
		}
	}

	comparator := newTestComparator(t, []*felis.Schema{reference, comparison}, Options{})
	report, err := comparator.Run()
	require.NoError(t, err)
	require.False(t, report.Empty())

	// Only the g band of Object differs between the two schemas.
	require.Contains(t, report, "Object")
	require.Len(t, report["Object"], 1)
	require.Len(t, report["Object"]["g"], 1)

	changed := report["Object"]["g"][0]["field_changed"].(map[string]any)
	diff := changed["columns['psfFlux']['unit']"].(map[string]any)
	assert.Equal(t, "nJy", diff["reference"])
	assert.Equal(t, "Jy", diff["comparison"])
}

func TestComparatorColumnAddedInComparison(t *testing.T) {
	reference := consistentSchema()
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"
	comparison.Tables[0].Columns = append(comparison.Tables[0].Columns,
		bandColumn("r", "newFlux", "double", "nJy", ""))

	comparator := newTestComparator(t, []*felis.Schema{reference, comparison}, Options{})
	report, err := comparator.Run()
	require.NoError(t, err)

	require.Contains(t, report["Object"], "r")
	added := report["Object"]["r"][0]["column_added"].(map[string]any)
	require.Len(t, added, 1)
	for _, element := range added {
		assert.Equal(t, "newFlux", element.(map[string]any)["name"])
	}
}

func TestComparatorColumnRemovedInComparison(t *testing.T) {
	reference := consistentSchema()
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"
	columns := comparison.Tables[0].Columns[:0]
	for _, col := range comparison.Tables[0].Columns {
		if col.Name != "z_psfFluxErr" {
			columns = append(columns, col)
		}
	}
	comparison.Tables[0].Columns = columns

	comparator := newTestComparator(t, []*felis.Schema{reference, comparison}, Options{})
	report, err := comparator.Run()
	require.NoError(t, err)

	require.Contains(t, report["Object"], "z")
	assert.Equal(t, []string{"columns['psfFluxErr']"}, report["Object"]["z"][0]["column_removed"])
}

// A table missing from the comparison schema is skipped, not reported.
func TestComparatorMissingTableSkipped(t *testing.T) {
	reference := consistentSchema()
	reference.Tables = append(reference.Tables, felis.Table{
		Name: "ForcedSource",
		Columns: []felis.Column{
			bandColumn("g", "flux", "double", "nJy", ""),
			bandColumn("i", "flux", "double", "nJy", ""),
		},
	})
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"

	comparator := newTestComparator(t, []*felis.Schema{reference, comparison}, Options{})
	report, err := comparator.Run()
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestComparatorBandSubset(t *testing.T) {
	reference := consistentSchema()
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"
	for i, col := range comparison.Tables[0].Columns {
		if col.Name == "u_psfFlux" {
			comparison.Tables[0].Columns[i].Properties["datatype"] = "float"
		}
	}

	// Restricted to g and r, the divergent u band is out of scope.
	comparator := newTestComparator(t, []*felis.Schema{reference, comparison},
		Options{Bands: []string{"g", "r"}})
	report, err := comparator.Run()
	require.NoError(t, err)
	assert.True(t, report.Empty())

	comparator = newTestComparator(t, []*felis.Schema{reference, comparison}, Options{})
	report, err = comparator.Run()
	require.NoError(t, err)
	require.Contains(t, report["Object"], "u")
}

func TestComparatorTableFilter(t *testing.T) {
	reference := consistentSchema()
	comparison := consistentSchema()
	comparison.Name = "comparison_schema"
	for i, col := range comparison.Tables[0].Columns {
		if col.Name == "g_psfFlux" {
			comparison.Tables[0].Columns[i].Properties["unit"] = "Jy"
		}
	}

	comparator := newTestComparator(t, []*felis.Schema{reference, comparison},
		Options{Tables: []string{"NoSuchTable"}})
	report, err := comparator.Run()
	require.NoError(t, err)
	assert.True(t, report.Empty())
}
