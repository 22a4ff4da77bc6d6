package consumers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/strategy"
	"minerva/internal/events"
	"minerva/pkg/errors"
)

type stubEvaluator struct {
	evaluated []*strategy.Strategy
}

func (s *stubEvaluator) Evaluate(ctx context.Context, st *strategy.Strategy) error {
	s.evaluated = append(s.evaluated, st)
	return nil
}

type stubStrategyRepo struct {
	byID map[uuid.UUID]*strategy.Strategy
}

func (r *stubStrategyRepo) Create(ctx context.Context, s *strategy.Strategy) error { return nil }
func (r *stubStrategyRepo) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	if s, ok := r.byID[id]; ok {
		return s, nil
	}
	return nil, errors.ErrNotFound
}
func (r *stubStrategyRepo) GetByName(ctx context.Context, name string) (*strategy.Strategy, error) {
	return nil, errors.ErrNotFound
}
func (r *stubStrategyRepo) List(ctx context.Context, limit, offset int) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (r *stubStrategyRepo) ListActive(ctx context.Context) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (r *stubStrategyRepo) ListDue(ctx context.Context, now time.Time) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (r *stubStrategyRepo) Update(ctx context.Context, s *strategy.Strategy) error        { return nil }
func (r *stubStrategyRepo) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error { return nil }
func (r *stubStrategyRepo) Archive(ctx context.Context, id uuid.UUID) error               { return nil }

func evaluationMessage(t *testing.T, event events.EvaluationRequested) kafkago.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Value: data}
}

func TestEvaluationConsumer_TriggersEvaluation(t *testing.T) {
	st := &strategy.Strategy{
		ID:      uuid.New(),
		Name:    "momentum_breakout",
		Status:  strategy.StatusActive,
		Symbols: strategy.Symbols{"600519", "000001"},
	}
	evaluator := &stubEvaluator{}
	ec := NewEvaluationConsumer(nil, strategy.NewService(&stubStrategyRepo{
		byID: map[uuid.UUID]*strategy.Strategy{st.ID: st},
	}), evaluator)

	msg := evaluationMessage(t, events.EvaluationRequested{
		Envelope:   events.NewEnvelope("strategy.evaluation_requested", "test"),
		StrategyID: st.ID,
		Reason:     "manual",
	})

	require.NoError(t, ec.handle(context.Background(), msg))
	require.Len(t, evaluator.evaluated, 1)
	assert.Equal(t, st.ID, evaluator.evaluated[0].ID)
	assert.Equal(t, strategy.Symbols{"600519", "000001"}, evaluator.evaluated[0].Symbols)
}

func TestEvaluationConsumer_NarrowsSymbols(t *testing.T) {
	st := &strategy.Strategy{
		ID:      uuid.New(),
		Name:    "momentum_breakout",
		Status:  strategy.StatusActive,
		Symbols: strategy.Symbols{"600519", "000001"},
	}
	evaluator := &stubEvaluator{}
	ec := NewEvaluationConsumer(nil, strategy.NewService(&stubStrategyRepo{
		byID: map[uuid.UUID]*strategy.Strategy{st.ID: st},
	}), evaluator)

	msg := evaluationMessage(t, events.EvaluationRequested{
		Envelope:   events.NewEnvelope("strategy.evaluation_requested", "test"),
		StrategyID: st.ID,
		Symbols:    []string{"000001", "999999"},
		Reason:     "manual",
	})

	require.NoError(t, ec.handle(context.Background(), msg))
	require.Len(t, evaluator.evaluated, 1)
	assert.Equal(t, strategy.Symbols{"000001"}, evaluator.evaluated[0].Symbols)
	// the shared strategy instance is left untouched
	assert.Equal(t, strategy.Symbols{"600519", "000001"}, st.Symbols)
}

func TestEvaluationConsumer_SkipsInactiveStrategy(t *testing.T) {
	st := &strategy.Strategy{
		ID:      uuid.New(),
		Name:    "momentum_breakout",
		Status:  strategy.StatusPaused,
		Symbols: strategy.Symbols{"600519"},
	}
	evaluator := &stubEvaluator{}
	ec := NewEvaluationConsumer(nil, strategy.NewService(&stubStrategyRepo{
		byID: map[uuid.UUID]*strategy.Strategy{st.ID: st},
	}), evaluator)

	msg := evaluationMessage(t, events.EvaluationRequested{
		Envelope:   events.NewEnvelope("strategy.evaluation_requested", "test"),
		StrategyID: st.ID,
		Reason:     "manual",
	})

	require.NoError(t, ec.handle(context.Background(), msg))
	assert.Empty(t, evaluator.evaluated)
}

func TestEvaluationConsumer_IgnoresUnknownStrategy(t *testing.T) {
	evaluator := &stubEvaluator{}
	ec := NewEvaluationConsumer(nil, strategy.NewService(&stubStrategyRepo{byID: map[uuid.UUID]*strategy.Strategy{}}), evaluator)

	msg := evaluationMessage(t, events.EvaluationRequested{
		Envelope:   events.NewEnvelope("strategy.evaluation_requested", "test"),
		StrategyID: uuid.New(),
		Reason:     "manual",
	})

	require.NoError(t, ec.handle(context.Background(), msg))
	assert.Empty(t, evaluator.evaluated)
}

func TestEvaluationConsumer_SkipsMalformedMessage(t *testing.T) {
	evaluator := &stubEvaluator{}
	ec := NewEvaluationConsumer(nil, strategy.NewService(&stubStrategyRepo{byID: map[uuid.UUID]*strategy.Strategy{}}), evaluator)

	require.NoError(t, ec.handle(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.Empty(t, evaluator.evaluated)
}
