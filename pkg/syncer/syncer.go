// Package syncer drives the reconciliation pipeline: fetch both record
// sets, index them by pivot key, diff them into a plan, and apply the plan
// against the remote store. The stages run strictly in sequence because the
// differ needs complete indices and the applier needs a complete plan.
package syncer

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync/pkg/applier"
	"github.com/agentstation/tablesync/pkg/differ"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/index"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/record"
)

// Source produces the CSV side of a sync: the observed header and the rows
// in file order, values verbatim as strings. Implementations must be
// restartable: every call re-reads from the start.
type Source interface {
	Table(ctx context.Context) (columns []string, records []record.Record, err error)
}

// Pager yields the remote record set one page at a time. The engine never
// assumes a single bulk fetch; it consumes pages until more is false.
type Pager interface {
	Next(ctx context.Context) (records []record.RemoteRecord, more bool, err error)
}

// Remote is the remote tabular store: a paginated read side plus the
// batched write side consumed by the applier.
type Remote interface {
	applier.Store

	// List starts a fresh pagination over the remote record set.
	List() Pager
}

// Syncer reconciles one CSV source against one remote store.
type Syncer struct {
	source Source
	remote Remote
	config Config
	logger *zerolog.Logger
}

// New creates a Syncer. The configuration is validated for shape here;
// schema validation against the observed CSV header happens at the start
// of each run.
func New(source Source, remote Remote, config Config, opts ...Option) (*Syncer, error) {
	if source == nil {
		return nil, errors.NewConfigError("syncer", "no CSV source configured", nil)
	}
	if remote == nil {
		return nil, errors.NewConfigError("syncer", "no remote store configured", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Syncer{
		source: source,
		remote: remote,
		config: config,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes one reconciliation pass and returns its result.
//
// Only configuration errors and total transport failure return an error;
// data-quality issues become warnings on the result and per-action write
// failures are recorded in the report.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	// Scope the logger to this run: every log line below carries the run
	// ID, and each stage tags its own lines.
	ctx = logging.WithLogger(ctx, s.logger)
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}

	fetchCtx := logging.WithStage(ctx, "fetch")
	columns, csvRecords, err := s.source.Table(fetchCtx)
	if err != nil {
		return nil, errors.WrapSync("fetch", err)
	}
	logging.Ctx(fetchCtx).Info().Int("records", len(csvRecords)).Msg("Fetched CSV export")

	if err := s.validateSchema(columns); err != nil {
		return nil, err
	}

	remoteRecords, err := s.fetchRemote(fetchCtx)
	if err != nil {
		return nil, errors.WrapSync("fetch", err)
	}
	logging.Ctx(fetchCtx).Info().Int("records", len(remoteRecords)).Msg("Fetched remote records")

	result := &Result{
		CSVRecords:    len(csvRecords),
		RemoteRecords: len(remoteRecords),
		DryRun:        s.config.DryRun,
	}

	pivot := s.config.PivotColumn
	csvIndex, csvWarnings := index.Build(csvRecords, func(r record.Record) (string, bool) {
		v, _ := r.Value(pivot)
		return record.Key(v)
	})
	remoteIndex, remoteWarnings := index.Build(remoteRecords, func(r record.RemoteRecord) (string, bool) {
		v, _ := r.Value(pivot)
		return record.Key(v)
	})
	result.CSVWarnings = csvWarnings
	result.RemoteWarnings = remoteWarnings
	indexCtx := logging.WithStage(ctx, "index")
	logWarnings(indexCtx, "csv", csvWarnings)
	logWarnings(indexCtx, "remote", remoteWarnings)

	plan := differ.New(pivot, s.config.ColumnsToCheck).Diff(csvIndex, remoteIndex)
	result.Plan = plan
	diffCtx := logging.WithStage(ctx, "diff")
	logging.Ctx(diffCtx).Info().
		Int("creates", plan.Creates()).
		Int("updates", plan.Updates()).
		Int("skipped", plan.Skipped()).
		Int("remote_only", plan.Orphans()).
		Msg(plan.String())

	if s.config.DryRun {
		logging.Ctx(diffCtx).Info().Msg("Dry run, no writes applied")
		return result, nil
	}

	result.Report = applier.New(s.remote,
		applier.WithMaxRetries(s.config.MaxRetries),
		applier.WithBackoff(s.config.Backoff, s.config.MaxBackoff),
		applier.WithConcurrency(s.config.Concurrency),
		applier.WithLogger(s.logger),
	).Apply(logging.WithStage(ctx, "apply"), plan)

	return result, nil
}

// validateSchema checks the pivot and checked columns against the observed
// CSV header. Violations are fatal and abort before any write.
func (s *Syncer) validateSchema(columns []string) error {
	if !slices.Contains(columns, s.config.PivotColumn) {
		return errors.NewConfigError("syncer",
			fmt.Sprintf("pivot column %q not in CSV header", s.config.PivotColumn),
			errors.ErrInvalidInput)
	}
	for _, col := range s.config.ColumnsToCheck {
		if !slices.Contains(columns, col) {
			return errors.NewConfigError("syncer",
				fmt.Sprintf("checked column %q not in CSV header", col),
				errors.ErrInvalidInput)
		}
	}
	return nil
}

// fetchRemote drains the remote store's pagination.
func (s *Syncer) fetchRemote(ctx context.Context) ([]record.RemoteRecord, error) {
	var records []record.RemoteRecord
	pager := s.remote.List()
	for {
		page, more, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if !more {
			return records, nil
		}
	}
}

// logWarnings reports data-quality warnings for one side. They never block
// the run.
func logWarnings(ctx context.Context, side string, w index.Warnings) {
	if !w.HasIssues() {
		return
	}
	event := logging.Ctx(ctx).Warn().
		Str("side", side).
		Int("unindexable", w.Unindexable).
		Int("duplicate_keys", len(w.Duplicates))
	if len(w.Duplicates) > 0 {
		keys := make([]string, 0, len(w.Duplicates))
		for _, d := range w.Duplicates {
			keys = append(keys, d.Key)
		}
		event = event.Strs("duplicates", keys)
	}
	event.Msg("Data-quality issues found while indexing")
}
