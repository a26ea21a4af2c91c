package index_test

import (
	"fmt"
	"testing"

	"github.com/agentstation/tablesync/pkg/index"
	"github.com/agentstation/tablesync/pkg/record"
)

func pivotKey(column string) func(record.Record) (string, bool) {
	return func(r record.Record) (string, bool) {
		v, _ := r.Value(column)
		return record.Key(v)
	}
}

func TestBuildPreservesInputOrder(t *testing.T) {
	records := []record.Record{
		record.New(map[string]any{"id": "C3"}),
		record.New(map[string]any{"id": "A1"}),
		record.New(map[string]any{"id": "B2"}),
	}

	ix, warnings := index.Build(records, pivotKey("id"))
	if warnings.HasIssues() {
		t.Fatalf("unexpected warnings: %s", warnings)
	}

	want := []string{"C3", "A1", "B2"}
	got := ix.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestBuildFirstOccurrenceWins(t *testing.T) {
	records := []record.Record{
		record.New(map[string]any{"id": "A1", "name": "first"}),
		record.New(map[string]any{"id": "A1", "name": "second"}),
		record.New(map[string]any{"id": "B2", "name": "other"}),
		record.New(map[string]any{"id": "A1", "name": "third"}),
	}

	ix, warnings := index.Build(records, pivotKey("id"))

	if ix.Len() != 2 {
		t.Errorf("expected 2 indexed records, got %d", ix.Len())
	}

	rec, ok := ix.Get("A1")
	if !ok {
		t.Fatal("expected A1 to be indexed")
	}
	if name, _ := rec.Value("name"); name != "first" {
		t.Errorf("expected first occurrence to win, got name=%v", name)
	}

	if len(warnings.Duplicates) != 2 {
		t.Fatalf("expected 2 duplicate warnings, got %d", len(warnings.Duplicates))
	}
	if warnings.Duplicates[0].Position != 1 || warnings.Duplicates[1].Position != 3 {
		t.Errorf("unexpected duplicate positions: %+v", warnings.Duplicates)
	}
}

func TestBuildUnindexableRecords(t *testing.T) {
	records := []record.Record{
		record.New(map[string]any{"id": "A1"}),
		record.New(map[string]any{"id": nil}),
		record.New(map[string]any{"name": "no pivot at all"}),
		record.New(map[string]any{"id": ""}),
	}

	ix, warnings := index.Build(records, pivotKey("id"))

	if ix.Len() != 1 {
		t.Errorf("expected 1 indexed record, got %d", ix.Len())
	}
	if warnings.Unindexable != 3 {
		t.Errorf("expected 3 unindexable records, got %d", warnings.Unindexable)
	}
}

func TestBuildCrossTypePivotKeys(t *testing.T) {
	// The CSV side carries text pivots, the remote side typed ones. Both
	// must land on the same key.
	csv := []record.Record{record.New(map[string]any{"id": "42"})}
	remote := []record.RemoteRecord{record.NewRemote("r1", map[string]any{"id": float64(42)})}

	csvIx, _ := index.Build(csv, pivotKey("id"))
	remoteIx, _ := index.Build(remote, func(r record.RemoteRecord) (string, bool) {
		v, _ := r.Value("id")
		return record.Key(v)
	})

	key := csvIx.Keys()[0]
	if !remoteIx.Has(key) {
		t.Errorf("expected remote index to contain key %q, has %v", key, remoteIx.Keys())
	}
}

func TestBuildIsPure(t *testing.T) {
	records := []record.Record{
		record.New(map[string]any{"id": "A1"}),
		record.New(map[string]any{"id": "A1"}),
	}

	first, firstWarn := index.Build(records, pivotKey("id"))
	second, secondWarn := index.Build(records, pivotKey("id"))

	if fmt.Sprint(first.Keys()) != fmt.Sprint(second.Keys()) {
		t.Error("repeated builds over identical input must agree")
	}
	if firstWarn.String() != secondWarn.String() {
		t.Error("repeated builds must report identical warnings")
	}
}
