package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/courtside/internal/adapters/mq/queue"
	"github.com/okian/courtside/internal/adapters/mq/worker"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// PlanJobs returns one job per season, or a single job over every season
// when pool is set.
func PlanJobs(mode string, seasons []string, pool bool) []model.Job {
	if pool || len(seasons) <= 1 {
		return []model.Job{{Name: model.JobName(mode, seasons), Mode: mode, Seasons: slices.Clone(seasons)}}
	}
	jobs := make([]model.Job, len(seasons))
	for i, season := range seasons {
		jobs[i] = model.Job{Name: model.JobName(mode, []string{season}), Mode: mode, Seasons: []string{season}}
	}
	return jobs
}

// RunBatch runs jobs on the worker pool and waits for all of them. Results
// come back in job order with nil for failed jobs. If any job failed the
// joined failures are returned alongside the successful results.
func (s *Service) RunBatch(ctx context.Context, jobs []model.Job) ([]*Result, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	jobs = slices.Clone(jobs)
	q := queue.NewInMemoryQueue(
		queue.WithCapacity(max(s.queueSize, len(jobs))),
		queue.WithMetrics(s.metrics),
	)
	for i, j := range jobs {
		if j.Name == "" {
			jobs[i].Name = model.JobName(j.Mode, j.Seasons)
		}
		if err := q.Enqueue(ctx, jobs[i]); err != nil {
			_ = q.Close()
			return nil, fmt.Errorf("enqueue %s: %w", jobs[i].Name, err)
		}
	}
	_ = q.Close()

	var (
		mu     sync.Mutex
		byName = make(map[string]*Result, len(jobs))
	)
	handler := worker.HandlerFunc(func(ctx context.Context, j model.Job) error {
		res, err := s.Run(ctx, j)
		if err != nil {
			return err
		}
		mu.Lock()
		byName[j.Name] = res
		mu.Unlock()
		return nil
	})

	workers := min(s.workerCount, len(jobs))
	pool := worker.NewPool(workers, q, handler,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithMetrics(s.metrics),
	)
	s.logger.Info(ctx, "batch started", logger.Int("jobs", len(jobs)), logger.Int("workers", workers))
	pool.Start(ctx)
	err := pool.Wait()

	results := make([]*Result, len(jobs))
	for i, j := range jobs {
		results[i] = byName[j.Name]
	}
	if err == nil {
		if cerr := ctx.Err(); cerr != nil && pool.Completed() < len(jobs) {
			err = cerr
		}
	}
	s.logger.Info(ctx, "batch finished", logger.Int("completed", pool.Completed()), logger.Bool("ok", err == nil))
	return results, err
}
