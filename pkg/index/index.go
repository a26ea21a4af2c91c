// Package index builds pivot-key indices over record sets and surfaces the
// data-quality issues found while doing so. Duplicate pivot keys and rows
// without a usable pivot are warnings, not errors: they are reported to the
// caller and never silently merged or dropped mid-build.
package index

import (
	"fmt"
	"strings"
)

// Duplicate records one occurrence of a pivot key that was already indexed.
// Position is the zero-based ordinal of the ignored record in the input.
type Duplicate struct {
	Key      string
	Position int
}

// Warnings accumulates the non-fatal data-quality issues found during a
// build. An unindexable record has a nil, absent, or empty pivot value and
// can never be matched.
type Warnings struct {
	Unindexable int
	Duplicates  []Duplicate
}

// HasIssues reports whether any warnings were recorded.
func (w Warnings) HasIssues() bool {
	return w.Unindexable > 0 || len(w.Duplicates) > 0
}

// String returns a human-readable summary of the warnings.
func (w Warnings) String() string {
	if !w.HasIssues() {
		return "no data-quality issues"
	}
	parts := []string{}
	if w.Unindexable > 0 {
		parts = append(parts, fmt.Sprintf("%d unindexable", w.Unindexable))
	}
	if len(w.Duplicates) > 0 {
		keys := make([]string, 0, len(w.Duplicates))
		for _, d := range w.Duplicates {
			keys = append(keys, d.Key)
		}
		parts = append(parts, fmt.Sprintf("%d duplicate keys (%s)", len(w.Duplicates), strings.Join(keys, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Index maps canonical pivot keys to one record each, preserving the input
// order of the indexed keys. Order preservation is what makes downstream
// plans deterministic.
type Index[T any] struct {
	byKey map[string]T
	keys  []string
}

// Build indexes records by the canonical key returned from the key func.
// The key func returns the canonical pivot key and whether the record is
// indexable at all.
//
// The first occurrence of a key wins; every later occurrence is recorded as
// a duplicate warning and otherwise ignored.
func Build[T any](records []T, key func(T) (string, bool)) (*Index[T], Warnings) {
	ix := &Index[T]{
		byKey: make(map[string]T, len(records)),
		keys:  make([]string, 0, len(records)),
	}
	var warnings Warnings

	for i, rec := range records {
		k, ok := key(rec)
		if !ok {
			warnings.Unindexable++
			continue
		}
		if _, exists := ix.byKey[k]; exists {
			warnings.Duplicates = append(warnings.Duplicates, Duplicate{Key: k, Position: i})
			continue
		}
		ix.byKey[k] = rec
		ix.keys = append(ix.keys, k)
	}

	return ix, warnings
}

// Get returns the record indexed under the given key.
func (ix *Index[T]) Get(key string) (T, bool) {
	rec, ok := ix.byKey[key]
	return rec, ok
}

// Has reports whether a record is indexed under the given key.
func (ix *Index[T]) Has(key string) bool {
	_, ok := ix.byKey[key]
	return ok
}

// Len returns the number of indexed records.
func (ix *Index[T]) Len() int {
	return len(ix.keys)
}

// Keys returns the indexed keys in input order. The returned slice is
// shared; callers must not modify it.
func (ix *Index[T]) Keys() []string {
	return ix.keys
}
