package bandcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lsst/sdm-tools/internal/felis"
)

// BandPlaceholder replaces band tokens in canonicalized names and
// descriptions so that two bands' column definitions compare equal.
const BandPlaceholder = "[BAND]"

// Grouper buckets a table's columns by band prefix and canonicalizes
// them so they can be compared across bands.
type Grouper struct {
	bands             []string
	ignoreDescription bool
	descPatterns      map[string][]descPattern
}

type descPattern struct {
	re          *regexp.Regexp
	replacement string
}

// NewGrouper returns a Grouper for the given band set. When
// ignoreDescription is set, canonicalized columns carry no description
// property at all.
func NewGrouper(bands []string, ignoreDescription bool) Grouper {
	g := Grouper{
		bands:             bands,
		ignoreDescription: ignoreDescription,
		descPatterns:      make(map[string][]descPattern, len(bands)),
	}
	for _, band := range bands {
		b := regexp.QuoteMeta(band)
		g.descPatterns[band] = []descPattern{
			{regexp.MustCompile(`\b` + b + `_`), BandPlaceholder + "_"},
			{regexp.MustCompile(`\b` + b + `-band`), BandPlaceholder + "-band"},
			{regexp.MustCompile(`\b` + b + ` band\b`), BandPlaceholder + " band"},
			{regexp.MustCompile(`\b` + b + ` filter\b`), BandPlaceholder + " filter"},
		}
	}
	return g
}

// GroupTable returns the table's canonicalized columns keyed by band,
// preserving column order within each band. Columns matching no band
// are excluded; a table with no band columns returns an empty map,
// which callers elide from their results.
func (g Grouper) GroupTable(table felis.Table) map[string][]map[string]any {
	grouped := make(map[string][]map[string]any)
	for _, column := range table.Columns {
		for _, band := range g.bands {
			if !strings.HasPrefix(column.Name, band+"_") {
				continue
			}
			grouped[band] = append(grouped[band], g.canonicalize(column, band))
		}
	}
	return grouped
}

// canonicalize produces a band-neutral copy of the column's properties:
// the band prefix is stripped from the name, band tokens in the
// description are replaced with a placeholder, and the per-load id is
// dropped since it is never equal across two loads.
func (g Grouper) canonicalize(column felis.Column, band string) map[string]any {
	props := make(map[string]any, len(column.Properties))
	for k, v := range column.Properties {
		props[k] = v
	}
	delete(props, "id")

	name := strings.TrimPrefix(column.Name, band+"_")

	// Known historical columns carry the band token mid-name rather
	// than as a prefix (APDB and DP0.3 solar system tables).
	switch name {
	case fmt.Sprintf("H_%s_G12_Cov", band):
		name = "H_" + BandPlaceholder + "_G12_Cov"
	case fmt.Sprintf("H_%sG12_Cov", band):
		name = "H_" + BandPlaceholder + "G12_Cov"
	}
	props["name"] = name

	if g.ignoreDescription {
		delete(props, "description")
	} else if desc, ok := props["description"].(string); ok {
		props["description"] = g.cleanDescription(desc, band)
	}

	return props
}

// cleanDescription rewrites band-specific text to the placeholder form.
// Substitution is case-sensitive and word-boundary anchored.
func (g Grouper) cleanDescription(description, band string) string {
	for _, p := range g.descPatterns[band] {
		description = p.re.ReplaceAllString(description, p.replacement)
	}
	return description
}

// columnNames extracts the canonicalized names from a grouped column list.
func columnNames(columns []map[string]any) []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		if name, ok := col["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}
