package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"minerva/pkg/logger"
)

// Consumer handles Kafka message consumption
type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 10e3 // 10KB
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10e6 // 10MB
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		StartOffset: kafka.FirstOffset, // start from beginning if no offset committed
	})

	return &Consumer{
		reader: reader,
		log:    logger.Get().With("component", "kafka_consumer", "topic", cfg.Topic),
	}
}

// MessageHandler is a function that processes a message
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consume reads messages until the context is cancelled. Handler
// failures are logged and skipped so one poison message cannot stall
// the partition.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.log.Info("starting consumer")

	for {
		msg, err := c.readMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return ctx.Err()
			}
			c.log.Errorf("failed to read message: %v", err)
			continue
		}

		c.log.Debugw("received message", "key", string(msg.Key), "offset", msg.Offset)

		if err := handler(ctx, msg); err != nil {
			c.log.Errorf("failed to handle message: %v", err)
		}
	}
}

// readMessage checks for shutdown before blocking on the reader, so a
// cancelled context never waits on broker I/O.
func (c *Consumer) readMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	default:
	}

	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		return kafka.Message{}, err
	}
	return msg, nil
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
