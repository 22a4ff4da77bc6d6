package evaluation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/internal/agents"
	"minerva/internal/domain/memory"
	"minerva/internal/domain/signal"
	"minerva/internal/domain/strategy"
	"minerva/internal/workflow"
	"minerva/pkg/errors"
)

type mockStrategyRepo struct {
	due        []*strategy.Strategy
	markedRuns []uuid.UUID
	mu         sync.Mutex
}

func (m *mockStrategyRepo) Create(ctx context.Context, s *strategy.Strategy) error { return nil }
func (m *mockStrategyRepo) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Strategy, error) {
	return nil, errors.ErrNotFound
}
func (m *mockStrategyRepo) GetByName(ctx context.Context, name string) (*strategy.Strategy, error) {
	return nil, errors.ErrNotFound
}
func (m *mockStrategyRepo) List(ctx context.Context, limit, offset int) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (m *mockStrategyRepo) ListActive(ctx context.Context) ([]*strategy.Strategy, error) {
	return nil, nil
}
func (m *mockStrategyRepo) ListDue(ctx context.Context, now time.Time) ([]*strategy.Strategy, error) {
	return m.due, nil
}
func (m *mockStrategyRepo) Update(ctx context.Context, s *strategy.Strategy) error { return nil }
func (m *mockStrategyRepo) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markedRuns = append(m.markedRuns, id)
	return nil
}
func (m *mockStrategyRepo) Archive(ctx context.Context, id uuid.UUID) error { return nil }

type mockSignalRepo struct {
	created []*signal.Signal
	mu      sync.Mutex
}

func (m *mockSignalRepo) Create(ctx context.Context, sig *signal.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, sig)
	return nil
}
func (m *mockSignalRepo) GetByID(ctx context.Context, id uuid.UUID) (*signal.Signal, error) {
	return nil, errors.ErrNotFound
}
func (m *mockSignalRepo) List(ctx context.Context, q signal.Query) ([]*signal.Signal, error) {
	return nil, nil
}
func (m *mockSignalRepo) GetLatestBySymbol(ctx context.Context, strategyID uuid.UUID, symbol string) (*signal.Signal, error) {
	return nil, errors.ErrNotFound
}

type mockLocker struct {
	acquired []string
	released []string
	denied   bool
}

func (m *mockLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if m.denied {
		return false, nil
	}
	m.acquired = append(m.acquired, name)
	return true, nil
}

func (m *mockLocker) Release(ctx context.Context, name string) error {
	m.released = append(m.released, name)
	return nil
}

// decisionRunner builds a single-node workflow that always emits the
// given decision.
func decisionRunner(t *testing.T, d agents.Decision) *workflow.Runner {
	t.Helper()

	g, err := workflow.NewBuilder().
		AddNode("decide", func(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error) {
			state.FinalDecision = &d
			state.ShouldEnd = true
			return state, nil
		}).
		SetEntry("decide").
		SetTerminal("decide").
		Compile()
	require.NoError(t, err)

	return workflow.NewRunner(g, workflow.NewEngine(nil), workflow.RunConfig{})
}

func testStrategy() *strategy.Strategy {
	return &strategy.Strategy{
		ID:              uuid.New(),
		Name:            "momentum_breakout",
		Status:          strategy.StatusActive,
		Symbols:         strategy.Symbols{"600519"},
		Workflow:        strategy.WorkflowStrategyDecision,
		IntervalSeconds: 300,
	}
}

func TestStrategyEvaluator_RecordsSignal(t *testing.T) {
	st := testStrategy()
	stratRepo := &mockStrategyRepo{due: []*strategy.Strategy{st}}
	sigRepo := &mockSignalRepo{}
	locker := &mockLocker{}

	decision := agents.NewDecision(agents.DecisionBuy, "600519", 0.82)
	decision.Reasoning = []string{"breakout above resistance"}
	decision.SupportingData = map[string]interface{}{
		"target_price": 1790.0,
		"stop_loss":    1650.0,
	}

	runners := map[strategy.WorkflowKind]*workflow.Runner{
		strategy.WorkflowStrategyDecision: decisionRunner(t, decision),
	}

	worker := NewStrategyEvaluator(
		strategy.NewService(stratRepo),
		signal.NewService(sigRepo),
		runners,
		locker,
		nil, nil, nil, nil,
		time.Minute,
		true,
	)

	require.NoError(t, worker.Run(context.Background()))

	require.Len(t, sigRepo.created, 1)
	sig := sigRepo.created[0]
	assert.Equal(t, st.ID, sig.StrategyID)
	assert.Equal(t, "600519", sig.Symbol)
	assert.Equal(t, signal.KindBuy, sig.Kind)
	assert.Equal(t, "high", sig.Tier)
	assert.NotEmpty(t, sig.RunID)
	assert.True(t, sig.TargetPrice.Valid)
	assert.Equal(t, "1790", sig.TargetPrice.Decimal.String())
	assert.True(t, sig.StopLoss.Valid)

	assert.Equal(t, []uuid.UUID{st.ID}, stratRepo.markedRuns)
	assert.Len(t, locker.acquired, 1)
	assert.Len(t, locker.released, 1)
}

type mockMemory struct {
	recalled   []*memory.Memory
	remembered []*memory.Memory
	mu         sync.Mutex
}

func (m *mockMemory) Recall(ctx context.Context, strategyID uuid.UUID, symbol, query string, limit int) ([]*memory.Memory, error) {
	return m.recalled, nil
}

func (m *mockMemory) Remember(ctx context.Context, mem *memory.Memory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remembered = append(m.remembered, mem)
	return nil
}

func TestStrategyEvaluator_StoresDecisionMemory(t *testing.T) {
	st := testStrategy()
	stratRepo := &mockStrategyRepo{due: []*strategy.Strategy{st}}
	sigRepo := &mockSignalRepo{}
	memories := &mockMemory{}

	decision := agents.NewDecision(agents.DecisionBuy, "600519", 0.82)
	decision.Reasoning = []string{"breakout above resistance"}

	runners := map[strategy.WorkflowKind]*workflow.Runner{
		strategy.WorkflowStrategyDecision: decisionRunner(t, decision),
	}

	worker := NewStrategyEvaluator(
		strategy.NewService(stratRepo),
		signal.NewService(sigRepo),
		runners,
		&mockLocker{},
		nil, nil, nil,
		memories,
		time.Minute,
		true,
	)

	require.NoError(t, worker.Run(context.Background()))

	require.Len(t, memories.remembered, 1)
	stored := memories.remembered[0]
	assert.Equal(t, st.ID, stored.StrategyID)
	assert.Equal(t, "600519", stored.Symbol)
	assert.Equal(t, memory.TypeDecision, stored.Type)
	assert.Contains(t, stored.Content, "breakout above resistance")
	assert.Equal(t, 0.82, stored.Importance)
}

func TestStrategyEvaluator_SkipsLockedStrategy(t *testing.T) {
	st := testStrategy()
	stratRepo := &mockStrategyRepo{due: []*strategy.Strategy{st}}
	sigRepo := &mockSignalRepo{}

	runners := map[strategy.WorkflowKind]*workflow.Runner{
		strategy.WorkflowStrategyDecision: decisionRunner(t, agents.NewDecision(agents.DecisionBuy, "600519", 0.9)),
	}

	worker := NewStrategyEvaluator(
		strategy.NewService(stratRepo),
		signal.NewService(sigRepo),
		runners,
		&mockLocker{denied: true},
		nil, nil, nil, nil,
		time.Minute,
		true,
	)

	require.NoError(t, worker.Run(context.Background()))

	assert.Empty(t, sigRepo.created)
	assert.Empty(t, stratRepo.markedRuns)
}

func TestStrategyEvaluator_NoDecisionNoSignal(t *testing.T) {
	st := testStrategy()
	stratRepo := &mockStrategyRepo{due: []*strategy.Strategy{st}}
	sigRepo := &mockSignalRepo{}

	g, err := workflow.NewBuilder().
		AddNode("noop", func(ctx context.Context, state *agents.SharedState) (*agents.SharedState, error) {
			state.ShouldEnd = true
			return state, nil
		}).
		SetEntry("noop").
		SetTerminal("noop").
		Compile()
	require.NoError(t, err)

	runners := map[strategy.WorkflowKind]*workflow.Runner{
		strategy.WorkflowStrategyDecision: workflow.NewRunner(g, workflow.NewEngine(nil), workflow.RunConfig{}),
	}

	worker := NewStrategyEvaluator(
		strategy.NewService(stratRepo),
		signal.NewService(sigRepo),
		runners,
		&mockLocker{},
		nil, nil, nil, nil,
		time.Minute,
		true,
	)

	require.NoError(t, worker.Run(context.Background()))

	assert.Empty(t, sigRepo.created)
	// strategy still marked as run so it is not immediately retried
	assert.Equal(t, []uuid.UUID{st.ID}, stratRepo.markedRuns)
}
