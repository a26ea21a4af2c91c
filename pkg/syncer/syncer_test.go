package syncer_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/applier"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/record"
	"github.com/agentstation/tablesync/pkg/syncer"
)

// fakeSource serves a fixed table, restartable by construction.
type fakeSource struct {
	columns []string
	rows    []map[string]any
}

func (s *fakeSource) Table(_ context.Context) ([]string, []record.Record, error) {
	records := make([]record.Record, 0, len(s.rows))
	for _, row := range s.rows {
		records = append(records, record.New(row))
	}
	return s.columns, records, nil
}

// fakeRemote is an in-memory store with offset pagination and real write
// semantics: creates append, updates merge fields into the stored record.
type fakeRemote struct {
	records  []record.RemoteRecord
	pageSize int
	nextID   int
}

func (r *fakeRemote) List() syncer.Pager {
	return &fakePager{remote: r}
}

type fakePager struct {
	remote *fakeRemote
	offset int
}

func (p *fakePager) Next(_ context.Context) ([]record.RemoteRecord, bool, error) {
	size := p.remote.pageSize
	if size <= 0 {
		size = 2
	}
	if p.offset >= len(p.remote.records) {
		return nil, false, nil
	}
	end := p.offset + size
	if end > len(p.remote.records) {
		end = len(p.remote.records)
	}
	page := p.remote.records[p.offset:end]
	p.offset = end
	return page, p.offset < len(p.remote.records), nil
}

func (r *fakeRemote) MaxBatchSize() int { return 10 }

func (r *fakeRemote) Create(_ context.Context, records []record.Record) ([]applier.ItemResult, error) {
	items := make([]applier.ItemResult, len(records))
	for i, rec := range records {
		r.nextID++
		id := fmt.Sprintf("rec%03d", r.nextID)
		r.records = append(r.records, record.NewRemote(id, rec.Fields()))
		items[i].RemoteID = id
	}
	return items, nil
}

func (r *fakeRemote) Update(_ context.Context, updates []applier.Update) ([]applier.ItemResult, error) {
	items := make([]applier.ItemResult, len(updates))
	for i, upd := range updates {
		items[i].RemoteID = upd.RemoteID
		found := false
		for j, existing := range r.records {
			if existing.ID == upd.RemoteID {
				fields := existing.Fields()
				for k, v := range upd.Fields.Fields() {
					fields[k] = v
				}
				r.records[j] = record.NewRemote(existing.ID, fields)
				found = true
				break
			}
		}
		if !found {
			items[i].Err = errors.ErrNotFound
		}
	}
	return items, nil
}

func testConfig() syncer.Config {
	cfg := syncer.DefaultConfig()
	cfg.PivotColumn = "id"
	cfg.ColumnsToCheck = []string{"name"}
	return cfg
}

func newSyncer(t *testing.T, source syncer.Source, remote syncer.Remote, cfg syncer.Config) *syncer.Syncer {
	t.Helper()
	s, err := syncer.New(source, remote, cfg, syncer.WithLogger(&logging.Nop))
	require.NoError(t, err)
	return s
}

// The example scenario: A1 matches and is current, A2 is missing remotely.
func TestRunCreateAndSkip(t *testing.T) {
	source := &fakeSource{
		columns: []string{"id", "name"},
		rows: []map[string]any{
			{"id": "A1", "name": "Foo"},
			{"id": "A2", "name": "Bar"},
		},
	}
	remote := &fakeRemote{
		records: []record.RemoteRecord{
			record.NewRemote("r1", map[string]any{"id": "A1", "name": "Foo"}),
		},
	}

	result, err := newSyncer(t, source, remote, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.Created)
	assert.Equal(t, 0, result.Report.Updated)
	assert.Equal(t, 1, result.Report.Skipped)
	assert.Equal(t, 0, result.Report.Failed)
	assert.Len(t, remote.records, 2)
}

func TestRunUpdatesStaleRecord(t *testing.T) {
	source := &fakeSource{
		columns: []string{"id", "name", "city"},
		rows: []map[string]any{
			{"id": "A1", "name": "Renamed", "city": "unchecked"},
		},
	}
	remote := &fakeRemote{
		records: []record.RemoteRecord{
			record.NewRemote("r1", map[string]any{"id": "A1", "name": "Original", "notes": "preserve"}),
		},
	}

	result, err := newSyncer(t, source, remote, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.Updated)

	updated := remote.records[0]
	name, _ := updated.Value("name")
	assert.Equal(t, "Renamed", name)
	notes, _ := updated.Value("notes")
	assert.Equal(t, "preserve", notes, "unchecked remote columns stay untouched")
	assert.False(t, updated.Has("city"), "unchecked CSV columns are not written")
}

// Applying the same input twice: the second run finds nothing to do.
func TestRunIdempotence(t *testing.T) {
	source := &fakeSource{
		columns: []string{"id", "name"},
		rows: []map[string]any{
			{"id": "A1", "name": "create me"},
			{"id": "A2", "name": "update me"},
			{"id": "A3", "name": "leave me"},
		},
	}
	remote := &fakeRemote{
		records: []record.RemoteRecord{
			record.NewRemote("r2", map[string]any{"id": "A2", "name": "stale"}),
			record.NewRemote("r3", map[string]any{"id": "A3", "name": "leave me"}),
		},
		pageSize: 1,
	}

	cfg := testConfig()
	first, err := newSyncer(t, source, remote, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Report.Created)
	assert.Equal(t, 1, first.Report.Updated)

	second, err := newSyncer(t, source, remote, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Plan.IsEmpty(), "second run should find an empty diff")
	assert.Equal(t, 3, second.Plan.Skipped())
}

func TestRunDryRun(t *testing.T) {
	source := &fakeSource{
		columns: []string{"id", "name"},
		rows:    []map[string]any{{"id": "A1", "name": "Foo"}},
	}
	remote := &fakeRemote{}

	cfg := testConfig()
	cfg.DryRun = true
	result, err := newSyncer(t, source, remote, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Nil(t, result.Report)
	assert.Equal(t, 1, result.Plan.Creates())
	assert.Empty(t, remote.records, "dry run must not write")
}

func TestRunSchemaValidation(t *testing.T) {
	source := &fakeSource{
		columns: []string{"id", "name"},
		rows:    []map[string]any{{"id": "A1", "name": "Foo"}},
	}

	cfg := testConfig()
	cfg.PivotColumn = "missing_pivot"
	remote := &fakeRemote{}

	_, err := newSyncer(t, source, remote, cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Empty(t, remote.records, "config errors abort before any write")

	cfg = testConfig()
	cfg.ColumnsToCheck = []string{"name", "missing_column"}
	_, err = newSyncer(t, source, remote, cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestRunDataQualityWarnings(t *testing.T) {
	source := &fakeSource{
		columns: []string{"id", "name"},
		rows: []map[string]any{
			{"id": "A1", "name": "first"},
			{"id": "A1", "name": "duplicate"},
			{"id": nil, "name": "no pivot"},
		},
	}
	remote := &fakeRemote{}

	result, err := newSyncer(t, source, remote, testConfig()).Run(context.Background())
	require.NoError(t, err, "data-quality issues never block the run")

	assert.True(t, result.HasWarnings())
	assert.Equal(t, 1, result.CSVWarnings.Unindexable)
	require.Len(t, result.CSVWarnings.Duplicates, 1)
	assert.Equal(t, "A1", result.CSVWarnings.Duplicates[0].Key)

	// Only the first occurrence was reconciled.
	require.Len(t, remote.records, 1)
	name, _ := remote.records[0].Value("name")
	assert.Equal(t, "first", name)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	source := &fakeSource{columns: []string{"id"}}
	remote := &fakeRemote{}

	_, err := syncer.New(source, remote, syncer.Config{})
	assert.Error(t, err, "missing pivot column")

	cfg := syncer.DefaultConfig()
	cfg.PivotColumn = "id"
	_, err = syncer.New(source, remote, cfg)
	assert.Error(t, err, "missing columns to check")

	_, err = syncer.New(nil, remote, testConfig())
	assert.Error(t, err, "missing source")
}
