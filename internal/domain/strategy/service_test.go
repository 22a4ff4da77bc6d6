package strategy_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/domain/strategy"
	"minerva/pkg/errors"
)

// mockRepository is a mock implementation of strategy.Repository
type mockRepository struct {
	createFunc func(ctx context.Context, s *strategy.Strategy) error
	getFunc    func(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error)
	updateFunc func(ctx context.Context, s *strategy.Strategy) error
}

func (m *mockRepository) Create(ctx context.Context, s *strategy.Strategy) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.ErrNotFound
}

func (m *mockRepository) GetByName(ctx context.Context, name string) (*strategy.Strategy, error) {
	return nil, errors.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]*strategy.Strategy, error) {
	return nil, nil
}

func (m *mockRepository) ListActive(ctx context.Context) ([]*strategy.Strategy, error) {
	return nil, nil
}

func (m *mockRepository) ListDue(ctx context.Context, now time.Time) ([]*strategy.Strategy, error) {
	return nil, nil
}

func (m *mockRepository) Update(ctx context.Context, s *strategy.Strategy) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, s)
	}
	return nil
}

func (m *mockRepository) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return nil
}

func TestCreateStrategy_Defaults(t *testing.T) {
	var captured *strategy.Strategy
	repo := &mockRepository{
		createFunc: func(ctx context.Context, s *strategy.Strategy) error {
			captured = s
			return nil
		},
	}
	svc := strategy.NewService(repo)

	err := svc.Create(context.Background(), &strategy.Strategy{
		Name:    "momentum breakout",
		Symbols: strategy.Symbols{"600519"},
	})
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.NotEqual(t, uuid.Nil, captured.ID)
	assert.Equal(t, strategy.StatusActive, captured.Status)
	assert.Equal(t, strategy.WorkflowStrategyDecision, captured.Workflow)
	assert.Equal(t, 3600, captured.IntervalSeconds)
	assert.JSONEq(t, "{}", string(captured.Parameters))
}

func TestCreateStrategy_Validation(t *testing.T) {
	svc := strategy.NewService(&mockRepository{})

	err := svc.Create(context.Background(), &strategy.Strategy{Symbols: strategy.Symbols{"600519"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	err = svc.Create(context.Background(), &strategy.Strategy{Name: "no symbols"})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	err = svc.Create(context.Background(), &strategy.Strategy{
		Name:     "bad workflow",
		Symbols:  strategy.Symbols{"600519"},
		Workflow: strategy.WorkflowKind("astrology"),
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSetStatus_ArchivedIsFinal(t *testing.T) {
	id := uuid.New()
	repo := &mockRepository{
		getFunc: func(ctx context.Context, got uuid.UUID) (*strategy.Strategy, error) {
			return &strategy.Strategy{ID: id, Status: strategy.StatusArchived}, nil
		},
	}
	svc := strategy.NewService(repo)

	err := svc.SetStatus(context.Background(), id, strategy.StatusActive)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestStrategy_Due(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)

	s := &strategy.Strategy{Status: strategy.StatusActive, IntervalSeconds: 3600}
	assert.True(t, s.Due(now), "never evaluated strategies are due")

	s.LastRunAt = &past
	assert.True(t, s.Due(now))

	recent := now.Add(-time.Minute)
	s.LastRunAt = &recent
	assert.False(t, s.Due(now))

	s.Status = strategy.StatusPaused
	s.LastRunAt = &past
	assert.False(t, s.Due(now))
}
