// Package record defines the normalized row representation shared by the CSV
// source and the remote store, together with the value normalization rules
// used when the two sides are compared.
//
// A Record holds column values keyed by column name. Values are one of
// string, float64, bool, or nil; an absent column is distinct from a nil
// value. Records are immutable after construction: every transformation
// returns a new Record.
package record

import (
	"sort"
)

// Record is a single normalized row from either side of a sync.
type Record struct {
	fields map[string]any
}

// New creates a Record from the given fields. The map is copied, so callers
// may reuse or mutate their map afterwards.
func New(fields map[string]any) Record {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Record{fields: copied}
}

// Value returns the value of a column and whether the column is present.
// A present column may still hold nil.
func (r Record) Value(column string) (any, bool) {
	v, ok := r.fields[column]
	return v, ok
}

// Has reports whether the column is present on this record.
func (r Record) Has(column string) bool {
	_, ok := r.fields[column]
	return ok
}

// Len returns the number of columns present on this record.
func (r Record) Len() int {
	return len(r.fields)
}

// Columns returns the sorted column names present on this record.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r.fields))
	for k := range r.fields {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Fields returns a copy of the underlying field map.
func (r Record) Fields() map[string]any {
	copied := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		copied[k] = v
	}
	return copied
}

// Select returns a new Record containing only the named columns that are
// present on this record. Absent columns stay absent.
func (r Record) Select(columns ...string) Record {
	fields := make(map[string]any, len(columns))
	for _, col := range columns {
		if v, ok := r.fields[col]; ok {
			fields[col] = v
		}
	}
	return Record{fields: fields}
}

// With returns a new Record with the given column set to the given value.
func (r Record) With(column string, value any) Record {
	fields := r.Fields()
	fields[column] = value
	return Record{fields: fields}
}

// RemoteRecord is a Record held by the remote store, carrying the opaque
// store-assigned identifier needed to address it for updates.
type RemoteRecord struct {
	Record

	// ID is the store-assigned identifier, unique within the remote set.
	ID string
}

// NewRemote creates a RemoteRecord from a store identifier and fields.
func NewRemote(id string, fields map[string]any) RemoteRecord {
	return RemoteRecord{Record: New(fields), ID: id}
}
