package syncer

import (
	"time"

	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
)

// Config carries the reconciliation settings for one Syncer. It is an
// explicit value object handed in by the caller; nothing inside the engine
// reads the environment.
type Config struct {
	// PivotColumn is the key column used to match a CSV row to a remote
	// record.
	PivotColumn string

	// ColumnsToCheck is the ordered subset of columns whose values decide
	// whether a matched remote record is stale.
	ColumnsToCheck []string

	// MaxRetries bounds how often a transiently failing batch is retried.
	MaxRetries int

	// Backoff and MaxBackoff shape the exponential retry backoff.
	Backoff    time.Duration
	MaxBackoff time.Duration

	// Concurrency bounds how many write batches may be in flight at once.
	Concurrency int

	// DryRun computes and reports the plan without writing.
	DryRun bool
}

// DefaultConfig returns a Config with the standard retry and concurrency
// settings. Pivot and checked columns must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  constants.MaxRetries,
		Backoff:     constants.RetryBackoff,
		MaxBackoff:  constants.MaxRetryBackoff,
		Concurrency: constants.DefaultConcurrency,
	}
}

// Validate checks the config for structural problems. Schema validation
// against the observed CSV header happens per run.
func (c Config) Validate() error {
	if c.PivotColumn == "" {
		return errors.NewConfigError("syncer", "pivot column not set", errors.ErrInvalidInput)
	}
	if len(c.ColumnsToCheck) == 0 {
		return errors.NewConfigError("syncer", "no columns to check configured", errors.ErrInvalidInput)
	}
	for _, col := range c.ColumnsToCheck {
		if col == "" {
			return errors.NewValidationError("columns_to_check", col, "empty column name")
		}
	}
	return nil
}
