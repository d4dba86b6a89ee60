package bandcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lsst/sdm-tools/internal/felis"
	"github.com/lsst/sdm-tools/internal/structdiff"
)

// ErrDifferencesFound signals the differences-found policy failure. It
// is returned by the command layer after a completed run has fully
// emitted its report, never raised mid-check.
var ErrDifferencesFound = errors.New("band column differences found")

// Options configures a Checker or Comparator.
type Options struct {
	// Tables restricts checking to the named tables. Empty means all.
	Tables []string
	// Bands is the band set in play. Defaults to DefaultBands().
	Bands []string
	// ReferenceBand is the left-hand side of every comparison.
	// Defaults to DefaultReferenceBand.
	ReferenceBand string
	// IgnoreDescription drops description text from all comparisons.
	IgnoreDescription bool
	// Logger receives consistency warnings and progress output.
	Logger *slog.Logger
}

func (o *Options) applyDefaults() {
	if len(o.Bands) == 0 {
		o.Bands = DefaultBands()
	}
	if o.ReferenceBand == "" {
		o.ReferenceBand = DefaultReferenceBand
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Checker verifies that band column definitions are consistent within
// each loaded schema: every band of a table should define the same
// columns with the same types and descriptions, modulo the band name.
type Checker struct {
	schemas []*felis.Schema
	grouper Grouper
	opts    Options
	log     *slog.Logger

	// grouped caches canonicalized band columns per schema and table,
	// built once at construction. Tables with no band columns are
	// elided entirely.
	grouped map[string]map[string]map[string][]map[string]any
}

// NewChecker builds a Checker over the given schemas.
func NewChecker(schemas []*felis.Schema, opts Options) (*Checker, error) {
	opts.applyDefaults()
	if err := ValidateBands(opts.Bands); err != nil {
		return nil, err
	}
	if err := ValidateBands([]string{opts.ReferenceBand}); err != nil {
		return nil, fmt.Errorf("reference band: %w", err)
	}

	c := &Checker{
		schemas: schemas,
		grouper: NewGrouper(opts.Bands, opts.IgnoreDescription),
		opts:    opts,
		log:     opts.Logger,
		grouped: make(map[string]map[string]map[string][]map[string]any, len(schemas)),
	}
	for _, schema := range schemas {
		tables := make(map[string]map[string][]map[string]any)
		for _, table := range schema.Tables {
			if !c.shouldCheckTable(table.Name) {
				c.log.Debug("skipping table", "table", table.Name)
				continue
			}
			bands := c.grouper.GroupTable(table)
			if len(bands) == 0 {
				continue
			}
			tables[table.Name] = bands
		}
		c.grouped[schema.Name] = tables
	}
	return c, nil
}

// BandColumns returns the canonicalized band columns by schema and table.
func (c *Checker) BandColumns() map[string]map[string]map[string][]map[string]any {
	return c.grouped
}

func (c *Checker) shouldCheckTable(name string) bool {
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

// Run executes the checks in their fixed order and returns the report
// of structural differences. Count and name-set inconsistencies are
// logged but non-fatal; only faults produce an error.
func (c *Checker) Run() (Report, error) {
	c.checkColumnCounts()
	c.checkColumnNames()
	return c.buildReport()
}

// checkColumnCounts verifies every band of a table defines the same
// number of columns.
func (c *Checker) checkColumnCounts() {
	for _, schema := range c.schemas {
		for _, table := range schema.Tables {
			bands, ok := c.grouped[schema.Name][table.Name]
			if !ok {
				continue
			}
			counts := make(map[string]int, len(bands))
			distinct := make(map[int]bool)
			for band, columns := range bands {
				counts[band] = len(columns)
				distinct[len(columns)] = true
			}
			c.log.Info("band column counts", "schema", schema.Name, "table", table.Name, "counts", counts)
			if len(distinct) > 1 {
				c.log.Warn("inconsistent number of band columns",
					"schema", schema.Name, "table", table.Name, "counts", counts)
			}
		}
	}
}

// checkColumnNames verifies every band of a table defines the same set
// of canonicalized column names as the reference band. Both directions
// of the symmetric difference are reported, sorted.
func (c *Checker) checkColumnNames() {
	ref := c.opts.ReferenceBand
	for _, schema := range c.schemas {
		c.log.Debug("checking column names", "schema", schema.Name)
		for _, table := range schema.Tables {
			bands, ok := c.grouped[schema.Name][table.Name]
			if !ok {
				continue
			}
			refColumns, ok := bands[ref]
			if !ok {
				c.log.Error("reference band not found",
					"schema", schema.Name, "table", table.Name, "band", ref)
				continue
			}
			refNames := nameSet(refColumns)
			for _, band := range c.opts.Bands {
				if band == ref {
					continue
				}
				columns, ok := bands[band]
				if !ok {
					continue
				}
				bandNames := nameSet(columns)
				missing := setDifference(refNames, bandNames)
				extra := setDifference(bandNames, refNames)
				if len(missing) == 0 && len(extra) == 0 {
					continue
				}
				c.log.Warn("band column name inconsistencies",
					"schema", schema.Name, "table", table.Name,
					"reference_band", ref, "band", band)
				c.log.Warn(fmt.Sprintf("  in '%s' but not in '%s': %v", ref, band, missing))
				c.log.Warn(fmt.Sprintf("  in '%s' but not in '%s': %v", band, ref, extra))
			}
		}
	}
}

// buildReport diffs every non-reference band of every table against the
// reference band and collects the remapped change sets.
func (c *Checker) buildReport() (Report, error) {
	report := Report{}
	ref := c.opts.ReferenceBand
	for _, schema := range c.schemas {
		for _, table := range schema.Tables {
			bands, ok := c.grouped[schema.Name][table.Name]
			if !ok {
				continue
			}
			refColumns, ok := bands[ref]
			if !ok {
				c.log.Warn("reference band not found, skipping table",
					"schema", schema.Name, "table", table.Name, "band", ref)
				continue
			}
			for _, band := range c.opts.Bands {
				if band == ref {
					continue
				}
				columns, ok := bands[band]
				if !ok {
					continue
				}
				diff := structdiff.Compare(refColumns, columns)
				if len(diff) == 0 {
					continue
				}
				remapped, err := RemapChangeSet(diff, refColumns)
				if err != nil {
					return nil, fmt.Errorf("remap diff for '%s'.'%s' band %q: %w",
						schema.Name, table.Name, band, err)
				}
				report.Add(schema.Name, table.Name, band, remapped)
			}
		}
	}
	return report, nil
}

func nameSet(columns []map[string]any) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, name := range columnNames(columns) {
		set[name] = true
	}
	return set
}

// setDifference returns the sorted elements of a that are not in b.
func setDifference(a, b map[string]bool) []string {
	diff := []string{}
	for name := range a {
		if !b[name] {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}
