// Package applier executes a plan against the remote store's write API.
// Actions are grouped into store-sized batches, transient failures are
// retried with bounded exponential backoff, and every action's outcome is
// reported in plan order. One bad batch never aborts the run.
package applier

import (
	"context"

	"github.com/agentstation/tablesync/pkg/record"
)

// ItemResult is the per-record outcome of one write call.
type ItemResult struct {
	// RemoteID is the store identifier: assigned by the store for creates,
	// echoed back for updates.
	RemoteID string
	// Err is nil when the item was written.
	Err error
}

// Update addresses one remote record whose checked columns are rewritten.
type Update struct {
	RemoteID string
	Fields   record.Record
}

// Store is the write side of the remote store.
//
// Both calls return one result per input, in input order, when the call as
// a whole succeeds. A non-nil error means the whole batch failed; the
// applier classifies it as transient or permanent via pkg/errors.
type Store interface {
	// MaxBatchSize returns the store's maximum records per write call.
	MaxBatchSize() int

	// Create inserts new records.
	Create(ctx context.Context, records []record.Record) ([]ItemResult, error)

	// Update rewrites the given columns of existing records.
	Update(ctx context.Context, updates []Update) ([]ItemResult, error)
}
