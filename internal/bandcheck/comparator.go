package bandcheck

import (
	"fmt"
	"log/slog"

	"github.com/lsst/sdm-tools/internal/felis"
	"github.com/lsst/sdm-tools/internal/structdiff"
)

// Comparator diffs the same band's column definitions across two
// schemas: the first is the reference, the second the comparison.
// Differences are reported as the transformations required to turn the
// reference schema into the comparison schema.
type Comparator struct {
	reference  *felis.Schema
	comparison *felis.Schema
	grouper    Grouper
	opts       Options
	log        *slog.Logger
}

// NewComparator builds a Comparator. Exactly two schemas are required.
func NewComparator(schemas []*felis.Schema, opts Options) (*Comparator, error) {
	if len(schemas) != 2 {
		return nil, fmt.Errorf("schema comparison requires exactly 2 schemas, got %d", len(schemas))
	}
	opts.applyDefaults()
	if err := ValidateBands(opts.Bands); err != nil {
		return nil, err
	}
	return &Comparator{
		reference:  schemas[0],
		comparison: schemas[1],
		grouper:    NewGrouper(opts.Bands, opts.IgnoreDescription),
		opts:       opts,
		log:        opts.Logger,
	}, nil
}

// Run compares each selected table's band columns across the two
// schemas and returns the collected differences.
//
// A table present in the reference schema but absent from the
// comparison schema is skipped, not reported as a removal; the skip is
// logged so the asymmetry with the within-schema column_removed path is
// visible. Likewise a band absent from either side of a table.
func (c *Comparator) Run() (CrossReport, error) {
	c.log.Debug("comparing schemas",
		"reference", c.reference.Name, "comparison", c.comparison.Name)

	comparisonTables := c.groupSchema(c.comparison)

	report := CrossReport{}
	for _, table := range c.reference.Tables {
		if !c.shouldCheckTable(table.Name) {
			c.log.Debug("skipping table", "table", table.Name)
			continue
		}
		refBands := c.grouper.GroupTable(table)
		if len(refBands) == 0 {
			continue
		}
		cmpBands, ok := comparisonTables[table.Name]
		if !ok {
			c.log.Warn("table not present in comparison schema, skipping",
				"table", table.Name, "comparison", c.comparison.Name)
			continue
		}
		for _, band := range c.opts.Bands {
			refColumns, ok := refBands[band]
			if !ok {
				c.log.Warn("band not present in reference schema table, skipping",
					"schema", c.reference.Name, "table", table.Name, "band", band)
				continue
			}
			cmpColumns, ok := cmpBands[band]
			if !ok {
				c.log.Warn("band not present in comparison schema table, skipping",
					"schema", c.comparison.Name, "table", table.Name, "band", band)
				continue
			}
			diff := structdiff.Compare(refColumns, cmpColumns)
			if len(diff) == 0 {
				continue
			}
			remapped, err := RemapChangeSet(diff, refColumns)
			if err != nil {
				return nil, fmt.Errorf("remap diff for table %q band %q: %w", table.Name, band, err)
			}
			report.Add(table.Name, band, remapped)
		}
	}
	return report, nil
}

func (c *Comparator) groupSchema(schema *felis.Schema) map[string]map[string][]map[string]any {
	tables := make(map[string]map[string][]map[string]any, len(schema.Tables))
	for _, table := range schema.Tables {
		bands := c.grouper.GroupTable(table)
		if len(bands) == 0 {
			continue
		}
		tables[table.Name] = bands
	}
	return tables
}

func (c *Comparator) shouldCheckTable(name string) bool {
	if len(c.opts.Tables) == 0 {
		return true
	}
	for _, t := range c.opts.Tables {
		if t == name {
			return true
		}
	}
	return false
}
