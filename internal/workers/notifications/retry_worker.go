package notifications

import (
	"context"
	"time"

	"minerva/internal/domain/notification"
	"minerva/internal/domain/signal"
	"minerva/internal/workers"
	"minerva/pkg/errors"
)

const retryBatchSize = 100

// RetryWorker re-delivers notifications that previously failed, for
// example because the user was inside a quiet-hours window or had no
// websocket connection at dispatch time.
type RetryWorker struct {
	*workers.BaseWorker
	notifications *notification.Service
	signals       *signal.Service
}

// NewRetryWorker creates the retry sweep worker.
func NewRetryWorker(notifications *notification.Service, signals *signal.Service, interval time.Duration, enabled bool) *RetryWorker {
	return &RetryWorker{
		BaseWorker:    workers.NewBaseWorker("notification_retry", interval, enabled),
		notifications: notifications,
		signals:       signals,
	}
}

// Run sweeps one batch of pending notifications
func (rw *RetryWorker) Run(ctx context.Context) error {
	if err := rw.notifications.RetryPending(ctx, retryBatchSize, rw.signals.GetByID); err != nil {
		return errors.Wrap(err, "retry pending notifications")
	}
	return nil
}
