// Package worker runs queued rating jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Job is what workers read off the queue.
type Job = model.Job

// Handler runs one job. Handlers called from different workers share no
// state unless they synchronize it themselves.
type Handler interface {
	Handle(ctx context.Context, j Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j Job) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, j Job) error { return f(ctx, j) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan Job
}

// Worker processes jobs until its queue is drained.
type Worker interface {
	// Run processes jobs until the queue is closed and drained, ctx is
	// canceled, or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string
	report  func(Job, error)

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger  logger.Logger
	metrics *metrics.Manager
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handler:  handler,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
		metrics:  metrics.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) {
	start := time.Now()
	w.metrics.WorkerStarted()
	err := w.handler.Handle(ctx, j)
	w.metrics.WorkerFinished(time.Since(start), err)

	if err != nil {
		w.metrics.RecordError("worker", "job_failed")
		w.logger.Error(ctx, "job failed",
			logger.String("worker", w.name),
			logger.String("job", j.Name),
			logger.Error(err),
		)
	} else {
		w.logger.Debug(ctx, "job done",
			logger.String("worker", w.name),
			logger.String("job", j.Name),
			logger.Duration("duration", time.Since(start)),
		)
	}
	if w.report != nil {
		w.report(j, err)
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Pool runs a fixed number of workers over one queue and collects job
// failures.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	mu        sync.Mutex
	failures  []error
	completed int

	logger logger.Logger
}

// NewPool creates workerCount workers sharing queue and handler. A
// non-positive count means one worker per CPU.
func NewPool(workerCount int, queue Queue, handler Handler, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, handler, wopts...)
		w.report = p.record
		p.workers[i] = w
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

func (p *Pool) record(j Job, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if err != nil {
		p.failures = append(p.failures, &JobError{Job: j, Err: err})
	}
}

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned, which happens once the queue
// is closed and drained or the context given to Start is canceled. It
// returns every job failure joined, or nil.
func (p *Pool) Wait() error {
	for _, w := range p.workers {
		<-w.done
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.failures...)
}

// Completed returns how many jobs have finished, failed or not.
func (p *Pool) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// Shutdown closes the queue if it can be closed, stops every worker after
// its current job, and waits for them until ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	var errs []error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
