package bandcheck

import (
	"fmt"
	"sort"

	"github.com/lsst/sdm-tools/internal/structdiff"
)

// Category identifies a change category produced by the diff engine.
// Unknown categories are carried through remapping untouched so that
// new diff output is surfaced rather than silently dropped.
type Category int

const (
	CategoryValuesChanged Category = iota
	CategoryFieldAdded
	CategoryFieldRemoved
	CategoryColumnAdded
	CategoryColumnRemoved
	CategoryUnknown
)

// categoryOf maps a raw change-set key to its Category.
func categoryOf(key string) Category {
	switch key {
	case structdiff.ValuesChanged:
		return CategoryValuesChanged
	case structdiff.DictionaryItemAdded:
		return CategoryFieldAdded
	case structdiff.DictionaryItemRemoved:
		return CategoryFieldRemoved
	case structdiff.IterableItemAdded:
		return CategoryColumnAdded
	case structdiff.IterableItemRemoved:
		return CategoryColumnRemoved
	default:
		return CategoryUnknown
	}
}

// UserFacing returns the report vocabulary for the category.
func (c Category) UserFacing() string {
	switch c {
	case CategoryValuesChanged:
		return "field_changed"
	case CategoryFieldAdded:
		return "field_added"
	case CategoryFieldRemoved:
		return "field_removed"
	case CategoryColumnAdded:
		return "column_added"
	case CategoryColumnRemoved:
		return "column_removed"
	default:
		return "unknown"
	}
}

// RemapChangeSet rewrites a positional change set into one addressed by
// canonicalized column names, with the report category vocabulary.
//
// Names are resolved against the reference column list, so a change is
// always attributed to the column that occupied that reference
// position. Added columns exist only on the comparison side and are
// reported by comparison-side position instead, since no reference
// name exists for them.
func RemapChangeSet(raw structdiff.ChangeSet, referenceColumns []map[string]any) (map[string]any, error) {
	remapped := make(map[string]any, len(raw))
	for key, payload := range raw {
		category := categoryOf(key)
		switch category {
		case CategoryValuesChanged:
			out, err := remapValuesChanged(payload, referenceColumns)
			if err != nil {
				return nil, err
			}
			remapped[category.UserFacing()] = out
		case CategoryFieldAdded, CategoryFieldRemoved:
			out, err := remapFieldPaths(payload, referenceColumns)
			if err != nil {
				return nil, err
			}
			remapped[category.UserFacing()] = out
		case CategoryColumnAdded:
			out, err := remapColumnsAdded(payload)
			if err != nil {
				return nil, err
			}
			remapped[category.UserFacing()] = out
		case CategoryColumnRemoved:
			out, err := remapColumnsRemoved(payload, referenceColumns)
			if err != nil {
				return nil, err
			}
			remapped[category.UserFacing()] = out
		case CategoryUnknown:
			remapped[key] = payload
		}
	}
	return remapped, nil
}

// resolveReferenceName returns the canonicalized name of the reference
// column at the given index. An out-of-range index means the diff
// engine and remapper disagree about the input, which is fatal.
func resolveReferenceName(path string, index int, referenceColumns []map[string]any) (string, error) {
	if index < 0 || index >= len(referenceColumns) {
		return "", fmt.Errorf("diff path %q: reference index %d out of range (have %d columns)",
			path, index, len(referenceColumns))
	}
	name, _ := referenceColumns[index]["name"].(string)
	return name, nil
}

func columnPath(name string) string {
	return fmt.Sprintf("columns['%s']", name)
}

func columnFieldPath(name, field string) string {
	if field == "" {
		return columnPath(name)
	}
	return fmt.Sprintf("columns['%s']['%s']", name, field)
}

// remapValuesChanged rewrites field-level value changes, relabeling the
// old/new pair as reference/comparison.
func remapValuesChanged(payload any, referenceColumns []map[string]any) (map[string]any, error) {
	changes, ok := payload.(map[string]structdiff.ValueChange)
	if !ok {
		return nil, fmt.Errorf("unexpected %s payload type %T", structdiff.ValuesChanged, payload)
	}
	out := make(map[string]any, len(changes))
	for path, change := range changes {
		key, err := ParseDiffPath(path)
		if err != nil {
			return nil, err
		}
		name, err := resolveReferenceName(path, key.Index, referenceColumns)
		if err != nil {
			return nil, err
		}
		out[columnFieldPath(name, key.Field)] = map[string]any{
			"reference":  change.OldValue,
			"comparison": change.NewValue,
		}
	}
	return out, nil
}

// remapFieldPaths rewrites whole-field additions and removals.
func remapFieldPaths(payload any, referenceColumns []map[string]any) ([]string, error) {
	paths, ok := payload.([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected field-path payload type %T", payload)
	}
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		key, err := ParseDiffPath(path)
		if err != nil {
			return nil, err
		}
		name, err := resolveReferenceName(path, key.Index, referenceColumns)
		if err != nil {
			return nil, err
		}
		out = append(out, columnFieldPath(name, key.Field))
	}
	sort.Strings(out)
	return out, nil
}

// remapColumnsAdded keeps comparison-side positions: an added column has
// no reference entry to name it by.
func remapColumnsAdded(payload any) (map[string]any, error) {
	items, ok := payload.(map[string]map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected %s payload type %T", structdiff.IterableItemAdded, payload)
	}
	out := make(map[string]any, len(items))
	for path, element := range items {
		key, err := ParseDiffPath(path)
		if err != nil {
			return nil, err
		}
		out[fmt.Sprintf("columns[%d]", key.Index)] = element
	}
	return out, nil
}

// remapColumnsRemoved names removed columns via the reference list.
func remapColumnsRemoved(payload any, referenceColumns []map[string]any) ([]string, error) {
	items, ok := payload.(map[string]map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected %s payload type %T", structdiff.IterableItemRemoved, payload)
	}
	out := make([]string, 0, len(items))
	for path := range items {
		key, err := ParseDiffPath(path)
		if err != nil {
			return nil, err
		}
		name, err := resolveReferenceName(path, key.Index, referenceColumns)
		if err != nil {
			return nil, err
		}
		out = append(out, columnPath(name))
	}
	sort.Strings(out)
	return out, nil
}
