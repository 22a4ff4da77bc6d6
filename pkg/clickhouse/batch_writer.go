package clickhouse

import (
	"context"
	"sync"
	"time"

	"minerva/pkg/logger"
)

// FlushFunc delivers one drained batch to its table.
type FlushFunc[T any] func(ctx context.Context, batch []T) error

// BatchWriter buffers rows in memory and hands them to its flush
// function in batches. ClickHouse throughput depends on batched
// inserts; single-row writes are pathological.
type BatchWriter[T any] struct {
	flush  FlushFunc[T]
	buffer []T
	mu     sync.Mutex
	log    *logger.Logger

	maxBatchSize int
	maxAge       time.Duration
	table        string

	lastFlush time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
}

// BatchWriterConfig configures a BatchWriter.
type BatchWriterConfig[T any] struct {
	Flush        FlushFunc[T]
	Table        string
	MaxBatchSize int           // default 500
	MaxAge       time.Duration // default 5s
}

// NewBatchWriter creates a writer for the given table.
func NewBatchWriter[T any](cfg BatchWriterConfig[T]) *BatchWriter[T] {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 500
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 5 * time.Second
	}

	return &BatchWriter[T]{
		flush:        cfg.Flush,
		buffer:       make([]T, 0, cfg.MaxBatchSize),
		maxBatchSize: cfg.MaxBatchSize,
		maxAge:       cfg.MaxAge,
		table:        cfg.Table,
		lastFlush:    time.Now(),
		stopCh:       make(chan struct{}),
		log:          logger.Get().With("component", "batch_writer", "table", cfg.Table),
	}
}

// Start launches the background age-based flush loop.
func (bw *BatchWriter[T]) Start(ctx context.Context) {
	bw.mu.Lock()
	if bw.running {
		bw.mu.Unlock()
		return
	}
	bw.running = true
	bw.ticker = time.NewTicker(bw.maxAge)
	bw.mu.Unlock()

	bw.wg.Add(1)
	go bw.flushLoop(ctx)

	bw.log.Infow("Batch writer started", "max_batch_size", bw.maxBatchSize, "max_age", bw.maxAge)
}

// Add buffers one row, flushing synchronously when the buffer fills.
func (bw *BatchWriter[T]) Add(ctx context.Context, item T) error {
	bw.mu.Lock()
	bw.buffer = append(bw.buffer, item)
	full := len(bw.buffer) >= bw.maxBatchSize
	bw.mu.Unlock()

	if full {
		return bw.Flush(ctx)
	}
	return nil
}

// Flush drains the buffer and writes it out. The write happens outside
// the lock so concurrent Adds keep buffering.
func (bw *BatchWriter[T]) Flush(ctx context.Context) error {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return nil
	}
	batch := bw.buffer
	bw.buffer = make([]T, 0, bw.maxBatchSize)
	bw.lastFlush = time.Now()
	bw.mu.Unlock()

	start := time.Now()
	if err := bw.flush(ctx, batch); err != nil {
		bw.log.Errorw("Batch flush failed", "rows", len(batch), "error", err, "duration", time.Since(start))
		return err
	}

	bw.log.Debugw("Batch flushed", "rows", len(batch), "duration", time.Since(start))
	return nil
}

func (bw *BatchWriter[T]) flushLoop(ctx context.Context) {
	defer bw.wg.Done()

	for {
		select {
		case <-ctx.Done():
			bw.finalFlush()
			return

		case <-bw.stopCh:
			bw.finalFlush()
			return

		case <-bw.ticker.C:
			bw.mu.Lock()
			pending := len(bw.buffer)
			bw.mu.Unlock()

			if pending > 0 {
				if err := bw.Flush(ctx); err != nil {
					bw.log.Errorw("Periodic flush failed", "error", err)
				}
			}
		}
	}
}

// finalFlush drains whatever remains on shutdown. Uses a fresh context
// because the run context is usually already cancelled by now.
func (bw *BatchWriter[T]) finalFlush() {
	if err := bw.Flush(context.Background()); err != nil {
		bw.log.Errorw("Final flush failed", "error", err)
	}
}

// Stop flushes remaining rows and waits for the loop to exit, bounded
// by ctx.
func (bw *BatchWriter[T]) Stop(ctx context.Context) error {
	bw.mu.Lock()
	if !bw.running {
		bw.mu.Unlock()
		return nil
	}
	bw.running = false
	bw.mu.Unlock()

	if bw.ticker != nil {
		bw.ticker.Stop()
	}
	close(bw.stopCh)

	done := make(chan struct{})
	go func() {
		bw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		bw.log.Info("Batch writer stopped")
		return nil
	case <-ctx.Done():
		bw.log.Warn("Batch writer stop timed out")
		return ctx.Err()
	}
}

// BufferSize reports the number of buffered rows.
func (bw *BatchWriter[T]) BufferSize() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}
