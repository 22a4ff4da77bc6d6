package events

import (
	"context"

	"github.com/google/uuid"

	"minerva/internal/adapters/kafka"
	"minerva/internal/domain/signal"
	"minerva/pkg/logger"
)

// Bus publishes typed platform events to Kafka. A nil Bus is a no-op,
// so callers never need to guard for a disabled broker.
type Bus struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

// NewBus wraps a producer for event publishing.
func NewBus(producer *kafka.Producer, source string) *Bus {
	return &Bus{
		producer: producer,
		source:   source,
		log:      logger.Get().With("component", "event_bus"),
	}
}

func (b *Bus) publish(ctx context.Context, topic, key string, event interface{}) {
	if b == nil || b.producer == nil {
		return
	}
	if err := b.producer.Publish(ctx, topic, key, event); err != nil {
		b.log.Warnw("event publish failed", "topic", topic, "key", key, "error", err)
	}
}

// EvaluationRequested publishes a strategy evaluation trigger.
func (b *Bus) EvaluationRequested(ctx context.Context, strategyID uuid.UUID, symbols []string, reason string) {
	b.publish(ctx, kafka.TopicEvaluationRequested, strategyID.String(), EvaluationRequested{
		Envelope:   NewEnvelope("strategies.evaluation_requested", b.sourceName()),
		StrategyID: strategyID,
		Symbols:    symbols,
		Reason:     reason,
	})
}

// AgentDecision publishes one agent decision from a run.
func (b *Bus) AgentDecision(ctx context.Context, strategyID uuid.UUID, runID, agentID, symbol, kind string, confidence float64, tier string) {
	b.publish(ctx, kafka.TopicAgentDecision, runID, AgentDecision{
		Envelope:   NewEnvelope("agents.decision", b.sourceName()),
		RunID:      runID,
		StrategyID: strategyID,
		AgentID:    agentID,
		Symbol:     symbol,
		Kind:       kind,
		Confidence: confidence,
		Tier:       tier,
	})
}

// SignalGenerated publishes a persisted signal.
func (b *Bus) SignalGenerated(ctx context.Context, sig *signal.Signal) {
	b.publish(ctx, kafka.TopicSignalGenerated, sig.Symbol, SignalGenerated{
		Envelope:   NewEnvelope("signals.generated", b.sourceName()),
		SignalID:   sig.ID,
		StrategyID: sig.StrategyID,
		RunID:      sig.RunID,
		Symbol:     sig.Symbol,
		Kind:       string(sig.Kind),
		Confidence: sig.Confidence,
		Tier:       sig.Tier,
	})
}

// NotificationDispatch publishes a fan-out request for a signal.
func (b *Bus) NotificationDispatch(ctx context.Context, signalID uuid.UUID) {
	b.publish(ctx, kafka.TopicNotificationDispatch, signalID.String(), NotificationDispatch{
		Envelope: NewEnvelope("notifications.dispatch", b.sourceName()),
		SignalID: signalID,
	})
}

func (b *Bus) sourceName() string {
	if b == nil || b.source == "" {
		return "minerva"
	}
	return b.source
}
