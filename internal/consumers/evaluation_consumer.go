package consumers

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"minerva/internal/adapters/kafka"
	"minerva/internal/domain/strategy"
	"minerva/internal/events"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// StrategyEvaluator triggers one evaluation of a strategy.
type StrategyEvaluator interface {
	Evaluate(ctx context.Context, st *strategy.Strategy) error
}

// EvaluationConsumer handles on-demand evaluation requests, bypassing
// the periodic schedule. Used for manual triggers and backfills.
type EvaluationConsumer struct {
	consumer   *kafka.Consumer
	strategies *strategy.Service
	evaluator  StrategyEvaluator
	log        *logger.Logger
}

// NewEvaluationConsumer creates a new evaluation consumer
func NewEvaluationConsumer(
	consumer *kafka.Consumer,
	strategies *strategy.Service,
	evaluator StrategyEvaluator,
) *EvaluationConsumer {
	return &EvaluationConsumer{
		consumer:   consumer,
		strategies: strategies,
		evaluator:  evaluator,
		log:        logger.Get().With("component", "evaluation_consumer"),
	}
}

// Start consumes until the context is cancelled
func (ec *EvaluationConsumer) Start(ctx context.Context) error {
	ec.log.Infow("Starting evaluation consumer", "topic", kafka.TopicEvaluationRequested)
	defer func() {
		if err := ec.consumer.Close(); err != nil {
			ec.log.Warnw("Failed to close evaluation consumer", "error", err)
		}
	}()

	err := ec.consumer.Consume(ctx, ec.handle)
	if errors.Is(err, context.Canceled) {
		ec.log.Info("Evaluation consumer stopped")
		return nil
	}
	return err
}

func (ec *EvaluationConsumer) handle(ctx context.Context, msg kafkago.Message) error {
	var event events.EvaluationRequested
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		ec.log.Warnw("Skipping malformed evaluation request", "offset", msg.Offset, "error", err)
		return nil
	}

	st, err := ec.strategies.GetByID(ctx, event.StrategyID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			ec.log.Warnw("Evaluation requested for unknown strategy", "strategy_id", event.StrategyID)
			return nil
		}
		return errors.Wrap(err, "load strategy")
	}

	if st.Status != strategy.StatusActive {
		ec.log.Infow("Skipping evaluation of inactive strategy",
			"strategy_id", st.ID,
			"status", st.Status,
		)
		return nil
	}

	// a request may narrow evaluation to a symbol subset
	if len(event.Symbols) > 0 {
		narrowed := *st
		narrowed.Symbols = intersect(st.Symbols, event.Symbols)
		if len(narrowed.Symbols) == 0 {
			ec.log.Warnw("Requested symbols not watched by strategy",
				"strategy_id", st.ID,
				"requested", event.Symbols,
			)
			return nil
		}
		st = &narrowed
	}

	ec.log.Infow("Evaluating strategy on request",
		"strategy_id", st.ID,
		"strategy", st.Name,
		"reason", event.Reason,
		"symbols", st.Symbols,
	)

	if err := ec.evaluator.Evaluate(ctx, st); err != nil {
		return errors.Wrapf(err, "evaluate strategy %s", st.ID)
	}
	return nil
}

func intersect(watched strategy.Symbols, requested []string) strategy.Symbols {
	set := make(map[string]struct{}, len(watched))
	for _, s := range watched {
		set[s] = struct{}{}
	}
	var out strategy.Symbols
	for _, s := range requested {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
