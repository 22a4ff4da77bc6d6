package workers

import (
	"context"
	"sync"
	"time"

	"minerva/pkg/logger"
)

// Worker is one periodic background job: an evaluation pass, a quote
// refresh, a notification sweep. The scheduler calls Run repeatedly on
// the worker's interval.
type Worker interface {
	// Name is the unique identifier, used in logs and metrics labels.
	Name() string

	// Run completes one iteration and returns. Long passes must honor
	// ctx cancellation between items.
	Run(ctx context.Context) error

	// Interval is the pause between iterations.
	Interval() time.Duration

	// Enabled reports whether the scheduler should run this worker.
	Enabled() bool
}

// WorkerWithHealth extends Worker with the run-history surface the
// scheduler feeds after each iteration.
type WorkerWithHealth interface {
	Worker
	Health() WorkerHealth
	SetEnabled(enabled bool)
}

// WorkerHealth is a snapshot of a worker's run history.
type WorkerHealth struct {
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	AvgDuration time.Duration
	Enabled     bool
}

// BaseWorker carries the identity, interval and health bookkeeping
// every concrete worker embeds.
type BaseWorker struct {
	name     string
	interval time.Duration
	enabled  bool
	log      *logger.Logger

	healthMu      sync.RWMutex
	lastRun       time.Time
	lastError     error
	runCount      int64
	errorCount    int64
	totalDuration time.Duration
}

// NewBaseWorker creates the embedded base for a concrete worker.
func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      logger.Get().With("worker", name),
	}
}

// Name returns the worker identifier.
func (w *BaseWorker) Name() string {
	return w.name
}

// Interval returns the pause between iterations.
func (w *BaseWorker) Interval() time.Duration {
	return w.interval
}

// Enabled reports whether the worker should run.
func (w *BaseWorker) Enabled() bool {
	w.healthMu.RLock()
	defer w.healthMu.RUnlock()
	return w.enabled
}

// SetEnabled flips the worker on or off.
func (w *BaseWorker) SetEnabled(enabled bool) {
	w.healthMu.Lock()
	defer w.healthMu.Unlock()
	w.enabled = enabled
	w.log.Infow("Worker enabled state changed", "enabled", enabled)
}

// Log returns the worker-scoped logger.
func (w *BaseWorker) Log() *logger.Logger {
	return w.log
}

// Health returns a snapshot of the run history.
func (w *BaseWorker) Health() WorkerHealth {
	w.healthMu.RLock()
	defer w.healthMu.RUnlock()

	avgDuration := time.Duration(0)
	if w.runCount > 0 {
		avgDuration = time.Duration(int64(w.totalDuration) / w.runCount)
	}

	return WorkerHealth{
		LastRun:     w.lastRun,
		LastError:   w.lastError,
		RunCount:    w.runCount,
		ErrorCount:  w.errorCount,
		AvgDuration: avgDuration,
		Enabled:     w.enabled,
	}
}

// RecordRun notes a successful iteration.
func (w *BaseWorker) RecordRun(duration time.Duration) {
	w.healthMu.Lock()
	defer w.healthMu.Unlock()

	w.lastRun = time.Now()
	w.runCount++
	w.totalDuration += duration
	w.lastError = nil
}

// RecordError notes a failed iteration. The error stays in LastError
// until a later iteration succeeds.
func (w *BaseWorker) RecordError(err error, duration time.Duration) {
	w.healthMu.Lock()
	defer w.healthMu.Unlock()

	w.lastRun = time.Now()
	w.runCount++
	w.errorCount++
	w.totalDuration += duration
	w.lastError = err
}
