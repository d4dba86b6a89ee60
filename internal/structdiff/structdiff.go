// Package structdiff computes an order-insensitive structural diff
// between two ordered sequences of mappings.
//
// The result is a categorized change set addressed by positional paths
// ("root[3]" for a whole element, "root[3]['unit']" for a field). The
// categories and path format are a stable contract consumed by the
// band-column remapping layer; indices for changed and removed entries
// refer to the reference sequence, while indices for added elements
// refer to the comparison sequence, which is the only place they exist.
package structdiff

import (
	"fmt"
	"reflect"
	"sort"
)

// Change categories present in a ChangeSet.
const (
	ValuesChanged         = "values_changed"
	DictionaryItemAdded   = "dictionary_item_added"
	DictionaryItemRemoved = "dictionary_item_removed"
	IterableItemAdded     = "iterable_item_added"
	IterableItemRemoved   = "iterable_item_removed"
)

// ValueChange records the two sides of a changed field.
type ValueChange struct {
	OldValue any
	NewValue any
}

// ChangeSet maps a change category to its payload:
//
//	values_changed           map[string]ValueChange
//	dictionary_item_added    []string
//	dictionary_item_removed  []string
//	iterable_item_added      map[string]map[string]any
//	iterable_item_removed    map[string]map[string]any
//
// An empty ChangeSet means the two sequences are structurally equal.
type ChangeSet map[string]any

// ElementPath returns the positional path for a whole element.
func ElementPath(index int) string {
	return fmt.Sprintf("root[%d]", index)
}

// FieldPath returns the positional path for a field within an element.
func FieldPath(index int, field string) string {
	return fmt.Sprintf("root[%d]['%s']", index, field)
}

// Compare diffs comparison against reference with element order ignored.
// Identical elements are matched first; remaining elements are paired
// greedily by the number of fields they share, and leftovers become
// whole-element additions or removals.
func Compare(reference, comparison []map[string]any) ChangeSet {
	refMatched := make([]bool, len(reference))
	cmpMatched := make([]bool, len(comparison))

	// Pass 1: consume exact matches by content key.
	cmpByKey := make(map[string][]int, len(comparison))
	for j, elem := range comparison {
		k := contentKey(elem)
		cmpByKey[k] = append(cmpByKey[k], j)
	}
	for i, elem := range reference {
		k := contentKey(elem)
		if idxs := cmpByKey[k]; len(idxs) > 0 {
			refMatched[i] = true
			cmpMatched[idxs[0]] = true
			cmpByKey[k] = idxs[1:]
		}
	}

	// Pass 2: pair the remainder by similarity.
	pairs := pairBySimilarity(reference, comparison, refMatched, cmpMatched)

	changes := ChangeSet{}
	valuesChanged := map[string]ValueChange{}
	var dictAdded, dictRemoved []string

	for _, p := range pairs {
		diffElements(p.ref, reference[p.ref], comparison[p.cmp], valuesChanged, &dictAdded, &dictRemoved)
	}

	itemRemoved := map[string]map[string]any{}
	for i, matched := range refMatched {
		if !matched {
			itemRemoved[ElementPath(i)] = reference[i]
		}
	}
	itemAdded := map[string]map[string]any{}
	for j, matched := range cmpMatched {
		if !matched {
			itemAdded[ElementPath(j)] = comparison[j]
		}
	}

	if len(valuesChanged) > 0 {
		changes[ValuesChanged] = valuesChanged
	}
	if len(dictAdded) > 0 {
		sort.Strings(dictAdded)
		changes[DictionaryItemAdded] = dictAdded
	}
	if len(dictRemoved) > 0 {
		sort.Strings(dictRemoved)
		changes[DictionaryItemRemoved] = dictRemoved
	}
	if len(itemAdded) > 0 {
		changes[IterableItemAdded] = itemAdded
	}
	if len(itemRemoved) > 0 {
		changes[IterableItemRemoved] = itemRemoved
	}
	return changes
}

type pair struct {
	ref int
	cmp int
}

// pairBySimilarity greedily pairs unmatched elements, most similar
// first. A pair must share at least one equal field to qualify;
// anything left over is reported as a whole-element add or remove.
func pairBySimilarity(reference, comparison []map[string]any, refMatched, cmpMatched []bool) []pair {
	type candidate struct {
		pair
		score int
	}
	var candidates []candidate
	for i := range reference {
		if refMatched[i] {
			continue
		}
		for j := range comparison {
			if cmpMatched[j] {
				continue
			}
			score := similarity(reference[i], comparison[j])
			if score > 0 {
				candidates = append(candidates, candidate{pair{i, j}, score})
			}
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		if candidates[a].ref != candidates[b].ref {
			return candidates[a].ref < candidates[b].ref
		}
		return candidates[a].cmp < candidates[b].cmp
	})

	var pairs []pair
	for _, c := range candidates {
		if refMatched[c.ref] || cmpMatched[c.cmp] {
			continue
		}
		refMatched[c.ref] = true
		cmpMatched[c.cmp] = true
		pairs = append(pairs, c.pair)
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].ref < pairs[b].ref })
	return pairs
}

// similarity counts the fields two elements hold with equal values.
func similarity(a, b map[string]any) int {
	score := 0
	for k, av := range a {
		if bv, ok := b[k]; ok && reflect.DeepEqual(av, bv) {
			score++
		}
	}
	return score
}

// diffElements records field-level differences between a paired
// reference and comparison element at reference index i.
func diffElements(i int, ref, cmp map[string]any, valuesChanged map[string]ValueChange, dictAdded, dictRemoved *[]string) {
	for _, k := range sortedKeys(ref) {
		cv, ok := cmp[k]
		if !ok {
			*dictRemoved = append(*dictRemoved, FieldPath(i, k))
			continue
		}
		if !reflect.DeepEqual(ref[k], cv) {
			valuesChanged[FieldPath(i, k)] = ValueChange{OldValue: ref[k], NewValue: cv}
		}
	}
	for _, k := range sortedKeys(cmp) {
		if _, ok := ref[k]; !ok {
			*dictAdded = append(*dictAdded, FieldPath(i, k))
		}
	}
}

// contentKey returns a stable string key for exact-match detection.
func contentKey(m map[string]any) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%#v", k, m[k]))
	}
	return fmt.Sprintf("%v", parts)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
