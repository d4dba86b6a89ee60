// Package bandcheck audits schemas for consistency of band columns:
// families of columns that are identical across photometric bands except
// for the band prefix on the column name (u_psfFlux, g_psfFlux, ...).
package bandcheck

import "fmt"

// defaultBands is the closed set of photometric band codes, in canonical
// filter order.
var defaultBands = []string{"u", "g", "r", "i", "z", "y"}

// DefaultBands returns the canonical band set. Callers get a copy; the
// band set in play is threaded explicitly through Options rather than
// read from shared state.
func DefaultBands() []string {
	bands := make([]string, len(defaultBands))
	copy(bands, defaultBands)
	return bands
}

// DefaultReferenceBand is the band compared against all others when no
// reference is configured.
const DefaultReferenceBand = "i"

// ValidateBands checks that every code in bands is a known band.
func ValidateBands(bands []string) error {
	if len(bands) == 0 {
		return fmt.Errorf("at least one band must be specified")
	}
	known := make(map[string]bool, len(defaultBands))
	for _, b := range defaultBands {
		known[b] = true
	}
	for _, b := range bands {
		if !known[b] {
			return fmt.Errorf("invalid band %q: must be one of %v", b, defaultBands)
		}
	}
	return nil
}
