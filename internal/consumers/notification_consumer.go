package consumers

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"minerva/internal/adapters/kafka"
	"minerva/internal/domain/notification"
	"minerva/internal/domain/signal"
	"minerva/internal/events"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// NotificationConsumer reads dispatch requests and fans the referenced
// signal out to its subscribers.
type NotificationConsumer struct {
	consumer      *kafka.Consumer
	signals       *signal.Service
	notifications *notification.Service
	log           *logger.Logger
}

// NewNotificationConsumer creates a new notification consumer
func NewNotificationConsumer(
	consumer *kafka.Consumer,
	signals *signal.Service,
	notifications *notification.Service,
) *NotificationConsumer {
	return &NotificationConsumer{
		consumer:      consumer,
		signals:       signals,
		notifications: notifications,
		log:           logger.Get().With("component", "notification_consumer"),
	}
}

// Start consumes until the context is cancelled
func (nc *NotificationConsumer) Start(ctx context.Context) error {
	nc.log.Infow("Starting notification consumer", "topic", kafka.TopicNotificationDispatch)
	defer func() {
		if err := nc.consumer.Close(); err != nil {
			nc.log.Warnw("Failed to close notification consumer", "error", err)
		}
	}()

	err := nc.consumer.Consume(ctx, nc.handle)
	if errors.Is(err, context.Canceled) {
		nc.log.Info("Notification consumer stopped")
		return nil
	}
	return err
}

func (nc *NotificationConsumer) handle(ctx context.Context, msg kafkago.Message) error {
	var event events.NotificationDispatch
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		nc.log.Warnw("Skipping malformed dispatch event", "offset", msg.Offset, "error", err)
		return nil
	}

	sig, err := nc.signals.GetByID(ctx, event.SignalID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			nc.log.Warnw("Dispatch references unknown signal", "signal_id", event.SignalID)
			return nil
		}
		return errors.Wrap(err, "load signal")
	}

	if err := nc.notifications.Dispatch(ctx, sig); err != nil {
		return errors.Wrapf(err, "dispatch signal %s", sig.ID)
	}

	nc.log.Debugw("Signal dispatched",
		"signal_id", sig.ID,
		"strategy_id", sig.StrategyID,
		"symbol", sig.Symbol,
	)
	return nil
}
