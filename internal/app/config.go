package service

import (
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/ridge"
)

// OptionsFromConfig translates the run settings of cfg into options.
// Collaborators (source, sinks, publisher, labeler) are left to the caller.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	method, err := ridge.ParseMethod(cfg.Solver.Method)
	if err != nil {
		return nil, err
	}
	solver := []ridge.Option{
		ridge.WithFolds(cfg.CVFolds),
		ridge.WithMethod(method),
		ridge.WithDenseMaxColumns(cfg.Solver.DenseMaxColumns),
		ridge.WithCGTolerance(cfg.Solver.CGTolerance),
	}
	if cfg.Solver.CGMaxIterations > 0 {
		solver = append(solver, ridge.WithCGMaxIterations(cfg.Solver.CGMaxIterations))
	}
	return []Option{
		WithMinAppearances(cfg.MinAppearances),
		WithDisplayMinAppearances(cfg.DisplayMinAppearances),
		WithAlphas(cfg.Alphas),
		WithSeasonWeights(cfg.SeasonWeights),
		WithSolverOptions(solver...),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
	}, nil
}
