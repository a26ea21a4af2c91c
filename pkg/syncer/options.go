package syncer

import (
	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Syncer
type Option func(*Syncer)

// WithLogger sets the logger used for run progress and warnings
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}
