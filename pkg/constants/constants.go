// Package constants provides shared constants used throughout the tablesync
// codebase. This includes timeouts, retry bounds, and batch limits that
// should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the
	// remote store and the CSV export endpoint
	DefaultHTTPTimeout = 30 * time.Second

	// SyncTimeout is the overall timeout for a full sync run
	SyncTimeout = 30 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for a failed batch
	MaxRetries = 3

	// DefaultBatchSize is the remote store's maximum records per write call
	DefaultBatchSize = 10

	// DefaultPageSize is the number of records per page when listing the
	// remote store
	DefaultPageSize = 100

	// DefaultConcurrency is the number of batches submitted concurrently.
	// The default keeps submission strictly sequential; raising it is a
	// wall-clock optimization, not a correctness requirement.
	DefaultConcurrency = 1

	// MaxConcurrency bounds how many batches may be in flight at once
	MaxConcurrency = 8
)
