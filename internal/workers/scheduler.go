package workers

import (
	"context"
	"sync"
	"time"

	"minerva/internal/metrics"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// startStagger spaces the initial run of successive workers so the
// evaluation, ingest and notification sweeps don't all hit postgres
// and redis in the same instant after boot.
const startStagger = 2 * time.Second

// stopTimeout bounds graceful shutdown. A strategy evaluation pass can
// take minutes when several symbols go through an agent workflow.
const stopTimeout = 2 * time.Minute

// runRecorder is the health surface BaseWorker exposes; the scheduler
// feeds it after every execution.
type runRecorder interface {
	RecordRun(duration time.Duration)
	RecordError(err error, duration time.Duration)
}

// Scheduler drives all registered background workers on their own
// intervals.
type Scheduler struct {
	workers []Worker
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	log     *logger.Logger
	started bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		workers: make([]Worker, 0),
		log:     logger.Get().With("component", "scheduler"),
	}
}

// RegisterWorker adds a worker. Registration is write-once-at-startup;
// calls after Start are rejected.
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler start", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start launches every enabled worker in its own goroutine, staggering
// their first runs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Infow("Starting worker scheduler", "workers", len(s.workers))

	launched := 0
	for _, worker := range s.workers {
		if !worker.Enabled() {
			s.log.Infow("Skipping disabled worker", "worker", worker.Name())
			continue
		}

		// never delay a worker past its own interval
		delay := time.Duration(launched) * startStagger
		if delay > worker.Interval() {
			delay = worker.Interval()
		}
		launched++

		s.wg.Add(1)
		go s.runWorker(worker, delay)
	}

	s.log.Infow("All workers started", "running", launched)
	return nil
}

// Stop cancels all workers and waits for in-flight runs to finish,
// bounded by stopTimeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	s.log.Info("Stopping worker scheduler...")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		s.log.Info("All workers stopped gracefully")
	case <-time.After(stopTimeout):
		s.log.Warnw("Worker shutdown timed out", "timeout", stopTimeout)
		shutdownErr = errors.Wrapf(errors.ErrInternal, "shutdown timeout after %s", stopTimeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return shutdownErr
}

// runWorker drives one worker: staggered first run, then ticks on the
// worker's interval until the scheduler context is cancelled.
func (s *Scheduler) runWorker(worker Worker, startDelay time.Duration) {
	defer s.wg.Done()

	if startDelay > 0 {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(startDelay):
		}
	}

	s.log.Infow("Worker started", "worker", worker.Name())

	ticker := time.NewTicker(worker.Interval())
	defer ticker.Stop()

	s.executeWorker(worker)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Infow("Worker stopping", "worker", worker.Name())
			return

		case <-ticker.C:
			s.executeWorker(worker)
		}
	}
}

// executeWorker runs one iteration, feeding the worker's health record
// and the prometheus worker metrics. A panic is contained to the
// iteration.
func (s *Scheduler) executeWorker(worker Worker) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("Worker panicked", "worker", worker.Name(), "panic", r)
			if rec, ok := worker.(runRecorder); ok {
				rec.RecordError(errors.Wrapf(errors.ErrInternal, "panic: %v", r), time.Since(start))
			}
		}
	}()

	err := worker.Run(s.ctx)
	elapsed := time.Since(start)

	metrics.RecordWorkerExecution(worker.Name(), elapsed, err)
	if rec, ok := worker.(runRecorder); ok {
		if err != nil {
			rec.RecordError(err, elapsed)
		} else {
			rec.RecordRun(elapsed)
		}
	}

	if err != nil {
		s.log.Errorw("Worker execution failed",
			"worker", worker.Name(),
			"error", err,
			"duration", elapsed,
		)
		return
	}
	s.log.Debugw("Worker execution completed", "worker", worker.Name(), "duration", elapsed)
}

// UnhealthyWorkers reports enabled workers that look stalled or are
// failing most of their runs. Backs the workers health probe.
func (s *Scheduler) UnhealthyWorkers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unhealthy []string
	now := time.Now()

	for _, w := range s.workers {
		hw, ok := w.(WorkerWithHealth)
		if !ok || !w.Enabled() {
			continue
		}

		h := hw.Health()
		if h.RunCount == 0 {
			// still inside its startup stagger
			continue
		}
		if now.Sub(h.LastRun) > 3*w.Interval() {
			unhealthy = append(unhealthy, w.Name())
			continue
		}
		if h.RunCount > 10 && float64(h.ErrorCount)/float64(h.RunCount) > 0.5 {
			unhealthy = append(unhealthy, w.Name())
		}
	}

	return unhealthy
}

// GetWorkers returns a snapshot of all registered workers.
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	return workers
}

// IsRunning reports whether Start has been called without a matching
// Stop.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
