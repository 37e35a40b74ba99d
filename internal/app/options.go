package service

import (
	"maps"
	"slices"

	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/ridge"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where possessions are loaded from.
func WithSource(src Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithSink adds a destination for finished tables. Sinks run in the order
// they were added.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithPublisher makes finished tables queryable, e.g. through the HTTP API.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLabeler replaces column labels in output tables.
func WithLabeler(fn func(entity.Column) string) Option {
	return func(s *Service) {
		s.labeler = fn
	}
}

// WithMinAppearances sets the inclusive appearance floor for columns.
func WithMinAppearances(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minAppearances = n
		}
	}
}

// WithDisplayMinAppearances drops output rows below n appearances after
// the fit.
func WithDisplayMinAppearances(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.displayMinAppearances = n
		}
	}
}

// WithAlphas sets the ridge penalty grid.
func WithAlphas(alphas []float64) Option {
	return func(s *Service) {
		if len(alphas) > 0 {
			s.alphas = slices.Clone(alphas)
		}
	}
}

// WithSeasonWeights weights every possession by its season. Once set,
// every season a job loads must have a weight.
func WithSeasonWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.seasonWeights = maps.Clone(weights)
	}
}

// WithSolverOptions passes options through to the ridge solver.
func WithSolverOptions(opts ...ridge.Option) Option {
	return func(s *Service) {
		s.solverOpts = append(s.solverOpts, opts...)
	}
}

// WithWorkerCount sets how many jobs of a batch run at once.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of jobs in one batch.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics manager runs report to.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRunIDs replaces the run id generator.
func WithRunIDs(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}
