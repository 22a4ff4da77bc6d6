package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWorker stands in for a scheduled job
type mockWorker struct {
	*BaseWorker
	runCount int32
	runFunc  func(ctx context.Context) error
}

func newMockWorker(name string, interval time.Duration, enabled bool) *mockWorker {
	return &mockWorker{
		BaseWorker: NewBaseWorker(name, interval, enabled),
		runFunc:    func(ctx context.Context) error { return nil },
	}
}

func (m *mockWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&m.runCount, 1)
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	return nil
}

func (m *mockWorker) GetRunCount() int {
	return int(atomic.LoadInt32(&m.runCount))
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler()

	worker1 := newMockWorker("strategy_evaluator", 100*time.Millisecond, true)
	scheduler.RegisterWorker(worker1)

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)
	assert.True(t, scheduler.IsRunning())

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	err = scheduler.Stop()
	require.NoError(t, err)
	assert.False(t, scheduler.IsRunning())

	// Worker should have run at least 2 times (immediate + 2 ticks)
	runCount := worker1.GetRunCount()
	assert.GreaterOrEqual(t, runCount, 2, "Worker should have run at least 2 times")
}

func TestScheduler_GracefulShutdown(t *testing.T) {
	scheduler := NewScheduler()

	// Job that is still mid-run when Stop is called
	worker := newMockWorker("daily_digest", 100*time.Millisecond, true)
	worker.runFunc = func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	}

	scheduler.RegisterWorker(worker)

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Let it run once
	time.Sleep(150 * time.Millisecond)

	// Should stop gracefully
	err = scheduler.Stop()
	require.NoError(t, err)
}

func TestScheduler_ContextCancellation(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("strategy_evaluator", 100*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	ctx, cancel := context.WithCancel(context.Background())

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Cancel context
	cancel()

	// Wait a bit for workers to stop
	time.Sleep(200 * time.Millisecond)

	// Stop should work even after context cancellation
	err = scheduler.Stop()
	require.NoError(t, err)
}

func TestScheduler_DisabledWorker(t *testing.T) {
	scheduler := NewScheduler()

	enabledWorker := newMockWorker("quote_refresher", 100*time.Millisecond, true)
	disabledWorker := newMockWorker("kline_backfill", 100*time.Millisecond, false)

	scheduler.RegisterWorker(enabledWorker)
	scheduler.RegisterWorker(disabledWorker)

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Let them run
	time.Sleep(250 * time.Millisecond)

	err = scheduler.Stop()
	require.NoError(t, err)

	// Enabled worker should have run
	assert.Greater(t, enabledWorker.GetRunCount(), 0)

	// Disabled worker should not have run
	assert.Equal(t, 0, disabledWorker.GetRunCount())
}

func TestScheduler_MultipleWorkers(t *testing.T) {
	scheduler := NewScheduler()

	worker1 := newMockWorker("strategy_evaluator", 100*time.Millisecond, true)
	worker2 := newMockWorker("quote_refresher", 100*time.Millisecond, true)
	worker3 := newMockWorker("notification_retry", 100*time.Millisecond, true)

	scheduler.RegisterWorker(worker1)
	scheduler.RegisterWorker(worker2)
	scheduler.RegisterWorker(worker3)

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)

	err = scheduler.Stop()
	require.NoError(t, err)

	// All workers should have run
	assert.Greater(t, worker1.GetRunCount(), 0)
	assert.Greater(t, worker2.GetRunCount(), 0)
	assert.Greater(t, worker3.GetRunCount(), 0)
}

func TestScheduler_RecordsWorkerHealth(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("strategy_evaluator", 50*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	require.NoError(t, scheduler.Start(context.Background()))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	health := worker.Health()
	assert.Greater(t, health.RunCount, int64(0))
	assert.Equal(t, int64(0), health.ErrorCount)
	assert.False(t, health.LastRun.IsZero())
}

func TestScheduler_PanickingWorkerKeepsTicking(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("quote_refresher", 50*time.Millisecond, true)
	worker.runFunc = func(ctx context.Context) error {
		panic("feed decode failure")
	}
	scheduler.RegisterWorker(worker)

	require.NoError(t, scheduler.Start(context.Background()))
	time.Sleep(180 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	// the panic is contained per iteration, so the loop keeps running
	assert.GreaterOrEqual(t, worker.GetRunCount(), 2)
	assert.Greater(t, worker.Health().ErrorCount, int64(0))
}

func TestScheduler_CannotStartTwice(t *testing.T) {
	scheduler := NewScheduler()

	worker := newMockWorker("strategy_evaluator", 100*time.Millisecond, true)
	scheduler.RegisterWorker(worker)

	ctx := context.Background()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Try to start again
	err = scheduler.Start(ctx)
	assert.Error(t, err)

	scheduler.Stop()
}

func TestScheduler_UnhealthyWorkers(t *testing.T) {
	scheduler := NewScheduler()

	healthy := newMockWorker("strategy_evaluator", time.Hour, true)
	healthy.RecordRun(time.Second)

	stalled := newMockWorker("quote_refresher", time.Millisecond, true)
	stalled.RecordRun(time.Second)
	time.Sleep(10 * time.Millisecond) // well past 3x interval

	failing := newMockWorker("notification_retry", time.Hour, true)
	for i := 0; i < 12; i++ {
		failing.RecordError(context.DeadlineExceeded, time.Second)
	}

	fresh := newMockWorker("daily_digest", time.Hour, true) // no runs yet

	scheduler.RegisterWorker(healthy)
	scheduler.RegisterWorker(stalled)
	scheduler.RegisterWorker(failing)
	scheduler.RegisterWorker(fresh)

	unhealthy := scheduler.UnhealthyWorkers()
	assert.ElementsMatch(t, []string{"quote_refresher", "notification_retry"}, unhealthy)
}

func TestScheduler_GetWorkers(t *testing.T) {
	scheduler := NewScheduler()

	worker1 := newMockWorker("strategy_evaluator", 100*time.Millisecond, true)
	worker2 := newMockWorker("quote_refresher", 200*time.Millisecond, false)

	scheduler.RegisterWorker(worker1)
	scheduler.RegisterWorker(worker2)

	workers := scheduler.GetWorkers()
	assert.Len(t, workers, 2)
	assert.Equal(t, "strategy_evaluator", workers[0].Name())
	assert.Equal(t, "quote_refresher", workers[1].Name())
}
