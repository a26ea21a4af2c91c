package differ_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/differ"
	"github.com/agentstation/tablesync/pkg/index"
	"github.com/agentstation/tablesync/pkg/record"
)

func buildCSV(t *testing.T, pivot string, rows ...map[string]any) *index.Index[record.Record] {
	t.Helper()
	records := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, record.New(row))
	}
	ix, _ := index.Build(records, func(r record.Record) (string, bool) {
		v, _ := r.Value(pivot)
		return record.Key(v)
	})
	return ix
}

func buildRemote(t *testing.T, pivot string, rows ...record.RemoteRecord) *index.Index[record.RemoteRecord] {
	t.Helper()
	ix, _ := index.Build(rows, func(r record.RemoteRecord) (string, bool) {
		v, _ := r.Value(pivot)
		return record.Key(v)
	})
	return ix
}

// Matched-and-current rows skip, unmatched rows create.
func TestDiffCreateAndSkip(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "name": "Foo"},
		map[string]any{"id": "A2", "name": "Bar"},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r1", map[string]any{"id": "A1", "name": "Foo"}),
	)

	plan := differ.New("id", []string{"name"}).Diff(csv, remote)

	require.Equal(t, 1, plan.Len())
	assert.Equal(t, 1, plan.Skipped())

	action := plan.Actions()[0]
	assert.Equal(t, differ.ActionCreate, action.Type)
	assert.Equal(t, "A2", action.Pivot)
	name, _ := action.Payload.Value("name")
	assert.Equal(t, "Bar", name)
	id, _ := action.Payload.Value("id")
	assert.Equal(t, "A2", id, "create payload carries the pivot column")
}

func TestDiffUpdateOnStaleColumn(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "name": "New Name", "ignored": "x"},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r1", map[string]any{"id": "A1", "name": "Old Name", "notes": "keep me"}),
	)

	plan := differ.New("id", []string{"name"}).Diff(csv, remote)

	require.Equal(t, 1, plan.Len())
	action := plan.Actions()[0]
	assert.Equal(t, differ.ActionUpdate, action.Type)
	assert.Equal(t, "r1", action.RemoteID)

	require.Len(t, action.Changes, 1)
	assert.Equal(t, "name", action.Changes[0].Column)
	assert.Equal(t, "Old Name", action.Changes[0].OldValue)
	assert.Equal(t, "New Name", action.Changes[0].NewValue)

	// Unchecked columns never ride along on an update payload.
	assert.False(t, action.Payload.Has("ignored"))
	assert.False(t, action.Payload.Has("notes"))
	assert.False(t, action.Payload.Has("id"))
}

// Trailing whitespace and text-vs-typed numbers are not staleness.
func TestDiffNormalizedEquality(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "name": "Foo", "count": "42"},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r1", map[string]any{"id": "A1", "name": "Foo ", "count": float64(42)}),
	)

	plan := differ.New("id", []string{"name", "count"}).Diff(csv, remote)

	assert.True(t, plan.IsEmpty())
	assert.Equal(t, 1, plan.Skipped())
}

func TestDiffNullAbsentEmptyEqual(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "notes": ""},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r1", map[string]any{"id": "A1", "notes": nil}),
	)

	plan := differ.New("id", []string{"notes", "missing_everywhere"}).Diff(csv, remote)
	assert.True(t, plan.IsEmpty(), "null, absent, and empty string are mutually equal")
}

func TestDiffNoDelete(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "name": "Foo"},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r1", map[string]any{"id": "A1", "name": "Foo"}),
		record.NewRemote("r2", map[string]any{"id": "Z9", "name": "Gone from CSV"}),
	)

	plan := differ.New("id", []string{"name"}).Diff(csv, remote)

	assert.True(t, plan.IsEmpty(), "remote-only records produce no action")
	assert.Equal(t, 1, plan.Orphans())
	for _, action := range plan.Actions() {
		assert.NotEqual(t, "r2", action.RemoteID)
	}
}

func TestDiffPlanOrderFollowsCSV(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "C3", "name": "c"},
		map[string]any{"id": "A1", "name": "a"},
		map[string]any{"id": "B2", "name": "b"},
	)
	remote := buildRemote(t, "id")

	plan := differ.New("id", []string{"name"}).Diff(csv, remote)

	require.Equal(t, 3, plan.Len())
	assert.Equal(t, "C3", plan.Actions()[0].Pivot)
	assert.Equal(t, "A1", plan.Actions()[1].Pivot)
	assert.Equal(t, "B2", plan.Actions()[2].Pivot)
}

func TestDiffDeterminism(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "name": "one"},
		map[string]any{"id": "A2", "name": "two"},
		map[string]any{"id": "A3", "name": "three"},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r1", map[string]any{"id": "A1", "name": "stale"}),
		record.NewRemote("r3", map[string]any{"id": "A3", "name": "three"}),
	)

	d := differ.New("id", []string{"name"})
	first := d.Diff(csv, remote)
	second := d.Diff(csv, remote)

	assert.Equal(t, first.Actions(), second.Actions())
	assert.Equal(t, first.Skipped(), second.Skipped())
}

// Every indexed CSV record lands in exactly one bucket.
func TestDiffCompleteness(t *testing.T) {
	csv := buildCSV(t, "id",
		map[string]any{"id": "A1", "name": "create me"},
		map[string]any{"id": "A2", "name": "update me"},
		map[string]any{"id": "A3", "name": "current"},
	)
	remote := buildRemote(t, "id",
		record.NewRemote("r2", map[string]any{"id": "A2", "name": "stale"}),
		record.NewRemote("r3", map[string]any{"id": "A3", "name": "current"}),
	)

	plan := differ.New("id", []string{"name"}).Diff(csv, remote)

	assert.Equal(t, csv.Len(), plan.Len()+plan.Skipped())

	seen := map[string]int{}
	for _, action := range plan.Actions() {
		seen[action.Pivot]++
	}
	for pivot, n := range seen {
		assert.Equal(t, 1, n, "pivot %s assigned to %d actions", pivot, n)
	}
}
