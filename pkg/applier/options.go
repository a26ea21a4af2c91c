package applier

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync/pkg/constants"
)

// Option is a functional option for configuring an Applier
type Option func(*Applier)

// WithMaxRetries sets how many times a transiently failing batch is retried
// before its actions are marked failed
func WithMaxRetries(n int) Option {
	return func(a *Applier) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

// WithBackoff sets the base and maximum exponential backoff durations
func WithBackoff(base, max time.Duration) Option {
	return func(a *Applier) {
		if base > 0 {
			a.backoff = base
		}
		if max > 0 {
			a.maxBackoff = max
		}
	}
}

// WithConcurrency bounds how many batches may be in flight at once.
// Anything at or below one keeps submission strictly sequential.
func WithConcurrency(n int) Option {
	return func(a *Applier) {
		if n > constants.MaxConcurrency {
			n = constants.MaxConcurrency
		}
		a.concurrency = n
	}
}

// WithLogger sets the logger used for batch-level progress and failures
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}
