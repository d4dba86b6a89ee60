package bandcheck

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformedDiffPath reports a positional diff path that does not
// match the diff engine's documented output format. This is a contract
// violation, not a data problem, and is never retryable.
var ErrMalformedDiffPath = errors.New("malformed diff path")

// diffPathRE matches "root[3]" and "root[3]['unit']".
var diffPathRE = regexp.MustCompile(`^root\[(\d+)\](?:\['(.+)'\])?$`)

// DiffKey is a parsed positional diff path: the element index plus the
// field name, or "" when the path addresses a whole element.
type DiffKey struct {
	Index int
	Field string
}

// ParseDiffPath extracts the index and optional field name from a
// positional diff path.
func ParseDiffPath(path string) (DiffKey, error) {
	m := diffPathRE.FindStringSubmatch(path)
	if m == nil {
		return DiffKey{}, fmt.Errorf("%w: %q", ErrMalformedDiffPath, path)
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return DiffKey{}, fmt.Errorf("%w: %q: %v", ErrMalformedDiffPath, path, err)
	}
	return DiffKey{Index: index, Field: m[2]}, nil
}
