package bootstrap

import (
	"context"
	"sync"
	"time"

	chclient "minerva/internal/adapters/clickhouse"
	"minerva/internal/adapters/kafka"
	pgclient "minerva/internal/adapters/postgres"
	redisclient "minerva/internal/adapters/redis"
	"minerva/internal/api"
	"minerva/internal/workers"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Lifecycle manages graceful startup and shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 60 * time.Second,
	}
}

// Shutdown performs coordinated cleanup of all components in order:
// 1. No new requests accepted (HTTP server)
// 2. Workers finish cleanly
// 3. Kafka consumers unblock before waiting for goroutines
// 4. Producer closes after consumers
// 5. Logs and errors flushed
// 6. Database connections last (other components may need them)
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	workerScheduler *workers.Scheduler,
	kafkaProducer *kafka.Producer,
	kafkaConsumers map[string]*kafka.Consumer,
	pgClient *pgclient.Client,
	chClient *chclient.Client,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	// Step 1: stop HTTP server
	log.Info("[1/7] Stopping HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
	defer httpCancel()

	if err := httpServer.Shutdown(httpCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("✓ HTTP server stopped")
	}

	// Step 2: stop background workers
	log.Info("[2/7] Stopping background workers...")
	if err := workerScheduler.Stop(); err != nil {
		log.Errorw("Workers shutdown failed", "error", err)
	} else {
		log.Info("✓ Workers stopped")
	}

	// Step 3: close Kafka consumers. Closing unblocks ReadMessage()
	// so the consumer goroutines can exit
	log.Info("[3/7] Closing Kafka consumers...")
	for name, consumer := range kafkaConsumers {
		if consumer == nil {
			continue
		}
		if err := consumer.Close(); err != nil {
			log.Errorw("Kafka consumer close failed", "consumer", name, "error", err)
		}
	}
	log.Info("✓ Kafka consumers closed")

	// Step 4: wait for goroutines
	log.Info("[4/7] Waiting for goroutines...")
	l.waitForGoroutines(wg, 5*time.Second, log)

	// Step 5: close Kafka producer
	log.Info("[5/7] Closing Kafka producer...")
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	// Step 6: flush error tracker and logs
	log.Info("[6/7] Flushing error tracker and logs...")
	l.flushErrorTracker(errorTracker, shutdownCtx, log)
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	// Step 7: close database connections LAST
	log.Info("[7/7] Closing database connections...")
	l.closeDatabases(pgClient, chClient, redisClient, log)

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(tracker errors.Tracker, ctx context.Context, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}

// closeDatabases closes all database connections
func (l *Lifecycle) closeDatabases(
	pgClient *pgclient.Client,
	chClient *chclient.Client,
	redisClient *redisclient.Client,
	log *logger.Logger,
) {
	var dbErrors []error

	if pgClient != nil {
		if err := pgClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "postgres"))
		}
	}

	if chClient != nil {
		if err := chClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "clickhouse"))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "redis"))
		}
	}

	if len(dbErrors) > 0 {
		log.Errorw("Database close errors", "errors", dbErrors)
	} else {
		log.Info("✓ Database connections closed")
	}
}
