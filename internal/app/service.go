// Package service runs the rating pipeline: acquisition, indexing, matrix
// assembly, pruning, solving and reporting, for one job or a batch.
package service

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtside/internal/domain/design"
	"github.com/okian/courtside/internal/domain/entity"
	"github.com/okian/courtside/internal/domain/failure"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/internal/domain/ridge"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Source yields possessions for a set of seasons.
type Source interface {
	Load(ctx context.Context, seasons []string) ([]model.Possession, error)
	Name() string
}

// Sink persists a finished table.
type Sink interface {
	Write(ctx context.Context, table *rating.Table) error
	Name() string
}

// Publisher makes a finished table available under a name.
type Publisher interface {
	Put(ctx context.Context, name string, table *rating.Table) error
}

// Default alpha grid, used when none is configured.
var defaultAlphas = []float64{1500, 1750, 2000, 2250, 2500, 2750, 3000, 3250, 3500, 3750, 4000}

// Service runs rating jobs. It holds configuration only; every run builds
// its own index, matrix and model, so runs may proceed concurrently.
type Service struct {
	source    Source
	sinks     []Sink
	publisher Publisher
	labeler   func(entity.Column) string

	minAppearances        int
	displayMinAppearances int
	alphas                []float64
	seasonWeights         map[string]float64
	solverOpts            []ridge.Option

	workerCount int
	queueSize   int

	logger   logger.Logger
	metrics  *metrics.Manager
	newRunID func() string
}

// Result describes a finished run.
type Result struct {
	RunID       string
	Job         model.Job
	Table       *rating.Table
	Model       *ridge.Model
	Possessions int
	Entities    int // distinct entities before the appearance floor
	Kept        int // entities at or above the floor
	Rows        int // design rows after pruning
	RowsPruned  int
	Columns     int
	Duration    time.Duration
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		alphas:      slices.Clone(defaultAlphas),
		workerCount: runtime.NumCPU(),
		queueSize:   64,
		metrics:     metrics.Default(),
		newRunID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run executes one job end to end. On failure the error is tagged with the
// stage that raised it (see failure.StageOf) and no table is written.
func (s *Service) Run(ctx context.Context, job model.Job) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: s.newRunID(), Job: job}
	if res.Job.Name == "" {
		res.Job.Name = model.JobName(job.Mode, job.Seasons)
	}
	log := s.logger.With(
		logger.String("run_id", res.RunID),
		logger.String("job", res.Job.Name),
		logger.String("mode", job.Mode),
	)
	log.Info(ctx, "run started", logger.Strings("seasons", job.Seasons))

	err := s.run(ctx, log, res)
	res.Duration = time.Since(start)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
		stage, _ := failure.StageOf(err)
		s.metrics.RecordError("pipeline", string(stage))
		log.Error(ctx, "run failed",
			logger.String("stage", string(stage)),
			logger.Duration("duration", res.Duration),
			logger.Error(err),
		)
	} else {
		log.Info(ctx, "run finished",
			logger.Float64("alpha", res.Model.Alpha),
			logger.Int("rows", res.Rows),
			logger.Int("columns", res.Columns),
			logger.Duration("duration", res.Duration),
		)
	}
	s.metrics.RecordRun(job.Mode, status, res.Duration)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, log logger.Logger, res *Result) error {
	job := res.Job

	var possessions []model.Possession
	err := s.stage(ctx, log, failure.StageAcquisition, func() error {
		if s.source == nil {
			return failure.DataAcquisition("none", ErrNoSource)
		}
		var err error
		possessions, err = s.source.Load(ctx, job.Seasons)
		if err != nil {
			return failure.DataAcquisition(s.source.Name(), err)
		}
		res.Possessions = len(possessions)
		return nil
	})
	if err != nil {
		return err
	}

	var idx *entity.Index
	err = s.stage(ctx, log, failure.StageIndexing, func() error {
		mode, err := entity.ParseMode(job.Mode)
		if err != nil {
			return failure.InvalidInput("%v", err)
		}
		strategy, err := entity.ForMode(mode)
		if err != nil {
			return failure.InvalidInput("%v", err)
		}
		idx = entity.BuildIndex(possessions, strategy, entity.WithMinAppearances(s.minAppearances))
		res.Entities, res.Kept = idx.Seen(), idx.Kept()
		return nil
	})
	if err != nil {
		return err
	}

	var (
		x       *design.Matrix
		y       []float64
		weights []float64
	)
	err = s.stage(ctx, log, failure.StageAssembly, func() error {
		x, y = design.Build(idx, possessions)
		var err error
		weights, err = design.SeasonWeights(possessions, s.seasonWeights)
		return err
	})
	if err != nil {
		return err
	}

	var pruned *design.Pruned
	err = s.stage(ctx, log, failure.StagePruning, func() error {
		var err error
		pruned, err = design.Prune(x, y)
		if err != nil {
			return err
		}
		weights = design.Gather(weights, pruned.Source)
		res.Rows, res.Columns = pruned.X.Dims()
		res.RowsPruned = pruned.Dropped(len(y))
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordDesign(job.Mode, res.Possessions, res.Entities, res.Kept, res.Rows, res.RowsPruned, res.Columns)

	err = s.stage(ctx, log, failure.StageSolving, func() error {
		fit, err := ridge.NewSolver(s.alphas, s.solverOpts...).Fit(pruned.X, pruned.Y, weights)
		if err != nil {
			return err
		}
		res.Model = fit
		s.metrics.RecordFit(job.Mode, fit.Alpha, bestScore(fit), fit.Iterations)
		return nil
	})
	if err != nil {
		return err
	}

	return s.stage(ctx, log, failure.StageReporting, func() error {
		table, err := rating.Report(idx, res.Model.Coef)
		if err != nil {
			return err
		}
		table.Meta.RunID = res.RunID
		table.Meta.Seasons = slices.Clone(job.Seasons)
		table.Meta.Alpha = res.Model.Alpha
		table.Meta.Intercept = res.Model.Intercept
		table = table.WithMinAppearances(s.displayMinAppearances)
		if s.labeler != nil {
			table = table.Relabel(s.labeler)
		}
		res.Table = table
		return s.emit(ctx, log, job.Name, table)
	})
}

// stage runs fn as the named pipeline stage, timing and logging it.
func (s *Service) stage(ctx context.Context, log logger.Logger, stage failure.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	s.metrics.RecordStage(string(stage), d)
	log.Debug(ctx, "stage done",
		logger.String("stage", string(stage)),
		logger.Duration("duration", d),
		logger.Bool("ok", err == nil),
	)
	return failure.AtStage(stage, err)
}

// emit hands a finished table to every sink and then the publisher. Sinks
// are not transactional: when one fails, the sinks before it keep the table
// and the error names them. The publisher only sees tables every sink took.
func (s *Service) emit(ctx context.Context, log logger.Logger, name string, table *rating.Table) error {
	written := make([]string, 0, len(s.sinks))
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, table); err != nil {
			s.metrics.RecordSinkWrite(sink.Name(), metrics.StatusFailure)
			if len(written) > 0 {
				log.Warn(ctx, "table left in earlier sinks", logger.Strings("sinks", written))
				return fmt.Errorf("write %s (already written to %s): %w", sink.Name(), strings.Join(written, ", "), err)
			}
			return fmt.Errorf("write %s: %w", sink.Name(), err)
		}
		written = append(written, sink.Name())
		s.metrics.RecordSinkWrite(sink.Name(), metrics.StatusSuccess)
		log.Info(ctx, "table written", logger.String("sink", sink.Name()), logger.Int("rows", table.Len()))
	}
	if s.publisher != nil {
		if err := s.publisher.Put(ctx, name, table); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
	}
	return nil
}

// bestScore returns the CV score of the chosen alpha, or 0 when no
// validation ran.
func bestScore(m *ridge.Model) float64 {
	for i, a := range m.Alphas {
		if a == m.Alpha && i < len(m.CVScores) {
			return m.CVScores[i]
		}
	}
	return 0
}
