package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"minerva/internal/agents"
	"minerva/internal/domain/market_data"
	"minerva/internal/domain/memory"
	"minerva/internal/domain/signal"
	"minerva/internal/domain/stats"
	"minerva/internal/domain/strategy"
	"minerva/internal/events"
	"minerva/internal/metrics"
	"minerva/internal/workers"
	"minerva/internal/workflow"
	"minerva/pkg/errors"
	"minerva/pkg/templates"
)

const evaluationLockTTL = 10 * time.Minute

// quoteSource supplies the latest cached quote for price context
type quoteSource interface {
	Get(ctx context.Context, symbol string) (*market_data.Quote, error)
}

// lockManager guards a strategy against concurrent evaluation across
// instances
type lockManager interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// runStats records per-run workflow telemetry
type runStats interface {
	InsertAgentRun(ctx context.Context, event *stats.AgentRunEvent) error
}

// DecisionMemory recalls similar past cases before a run and stores the
// decision trace afterwards. Nil disables memory entirely.
type DecisionMemory interface {
	Recall(ctx context.Context, strategyID uuid.UUID, symbol, query string, limit int) ([]*memory.Memory, error)
	Remember(ctx context.Context, m *memory.Memory) error
}

// StrategyEvaluator walks due strategies and runs their agent workflow
// for every watched symbol, recording the resulting signals.
type StrategyEvaluator struct {
	*workers.BaseWorker
	strategies *strategy.Service
	signals    *signal.Service
	runners    map[strategy.WorkflowKind]*workflow.Runner
	locker     lockManager
	bus        *events.Bus
	stats      runStats
	quotes     quoteSource
	memories   DecisionMemory
	templates  *templates.Registry
}

// NewStrategyEvaluator creates the evaluation worker.
func NewStrategyEvaluator(
	strategies *strategy.Service,
	signals *signal.Service,
	runners map[strategy.WorkflowKind]*workflow.Runner,
	locker lockManager,
	bus *events.Bus,
	statsRepo runStats,
	quotes quoteSource,
	memories DecisionMemory,
	interval time.Duration,
	enabled bool,
) *StrategyEvaluator {
	return &StrategyEvaluator{
		BaseWorker: workers.NewBaseWorker("strategy_evaluator", interval, enabled),
		strategies: strategies,
		signals:    signals,
		runners:    runners,
		locker:     locker,
		bus:        bus,
		stats:      statsRepo,
		quotes:     quotes,
		memories:   memories,
		templates:  templates.Get(),
	}
}

// Run executes one scheduling pass over due strategies
func (se *StrategyEvaluator) Run(ctx context.Context) error {
	now := time.Now().UTC()

	due, err := se.strategies.ListDue(ctx, now)
	if err != nil {
		return errors.Wrap(err, "list due strategies")
	}

	if len(due) == 0 {
		se.Log().Debug("No strategies due for evaluation")
		return nil
	}

	se.Log().Infow("Evaluating due strategies", "count", len(due))

	evaluated := 0
	for _, st := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := se.Evaluate(ctx, st); err != nil {
			se.Log().Errorw("Strategy evaluation failed",
				"strategy_id", st.ID,
				"strategy", st.Name,
				"error", err,
			)
			continue
		}
		evaluated++
	}

	se.Log().Infow("Evaluation pass complete", "due", len(due), "evaluated", evaluated)
	return nil
}

// Evaluate runs one strategy through its workflow under a
// cross-instance lock. Safe to call from the scheduler and from
// manual-trigger consumers concurrently.
func (se *StrategyEvaluator) Evaluate(ctx context.Context, st *strategy.Strategy) error {
	lockName := "strategy_eval:" + st.ID.String()
	acquired, err := se.locker.Acquire(ctx, lockName, evaluationLockTTL)
	if err != nil {
		return errors.Wrap(err, "acquire evaluation lock")
	}
	if !acquired {
		se.Log().Debugw("Strategy already being evaluated elsewhere", "strategy_id", st.ID)
		return nil
	}
	defer func() {
		if err := se.locker.Release(context.WithoutCancel(ctx), lockName); err != nil {
			se.Log().Warnw("Failed to release evaluation lock", "strategy_id", st.ID, "error", err)
		}
	}()

	runner, ok := se.runners[st.Workflow]
	if !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "no runner for workflow %q", st.Workflow)
	}

	for _, symbol := range st.Symbols {
		if err := se.runSymbol(ctx, st, runner, symbol); err != nil {
			se.Log().Warnw("Symbol evaluation failed",
				"strategy_id", st.ID,
				"symbol", symbol,
				"error", err,
			)
		}
	}

	if err := se.strategies.MarkRun(ctx, st.ID, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "mark strategy run")
	}
	return nil
}

func (se *StrategyEvaluator) runSymbol(ctx context.Context, st *strategy.Strategy, runner *workflow.Runner, symbol string) error {
	runID := fmt.Sprintf("run_%s", uuid.NewString())
	started := time.Now()

	prompt, err := se.templates.Render("workflows/strategy_input", map[string]interface{}{
		"Strategy":   st.Name,
		"Symbol":     symbol,
		"Timestamp":  started.UTC().Format(time.RFC3339),
		"Parameters": paramsString(st),
		"PastCases":  se.recallPastCases(ctx, st, symbol),
	})
	if err != nil {
		return errors.Wrap(err, "render workflow input")
	}

	input := agents.Input{
		TaskID:   runID,
		TaskType: string(st.Workflow),
		Content: map[string]interface{}{
			"symbol": symbol,
			"prompt": prompt,
		},
		Metadata: map[string]interface{}{
			"strategy_id": st.ID.String(),
			"strategy":    st.Name,
			"workflow":    string(st.Workflow),
		},
	}

	state, runErr := runner.Execute(ctx, input)
	elapsed := time.Since(started)
	metrics.RecordWorkflowRun(string(st.Workflow), elapsed, runErr)

	se.recordRun(ctx, st, runID, symbol, started, elapsed, state, runErr)

	if runErr != nil {
		return errors.Wrap(runErr, "execute workflow")
	}

	if state.FinalDecision == nil {
		se.Log().Debugw("Workflow produced no final decision",
			"strategy_id", st.ID,
			"symbol", symbol,
			"run_id", runID,
		)
		return nil
	}

	if err := se.emitSignal(ctx, st, runID, symbol, state.FinalDecision); err != nil {
		return err
	}

	se.rememberDecision(ctx, st, runID, symbol, state.FinalDecision)
	return nil
}

// recallPastCases returns a rendered block of similar prior decisions
// for the prompt, or "" when memory is disabled or recall fails.
func (se *StrategyEvaluator) recallPastCases(ctx context.Context, st *strategy.Strategy, symbol string) string {
	if se.memories == nil {
		return ""
	}

	query := fmt.Sprintf("%s decision for %s", st.Name, symbol)
	cases, err := se.memories.Recall(ctx, st.ID, symbol, query, 3)
	if err != nil {
		se.Log().Debugw("Memory recall failed", "strategy_id", st.ID, "symbol", symbol, "error", err)
		return ""
	}
	if len(cases) == 0 {
		return ""
	}

	var b strings.Builder
	for _, m := range cases {
		fmt.Fprintf(&b, "- [%s] %s\n", m.CreatedAt.Format("2006-01-02"), m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (se *StrategyEvaluator) rememberDecision(ctx context.Context, st *strategy.Strategy, runID, symbol string, decision *agents.Decision) {
	if se.memories == nil {
		return
	}

	content := fmt.Sprintf("%s %s with confidence %.2f", decision.Kind, symbol, decision.Confidence)
	if len(decision.Reasoning) > 0 {
		content += ": " + strings.Join(decision.Reasoning, "; ")
	}

	m := &memory.Memory{
		StrategyID: st.ID,
		RunID:      runID,
		Type:       memory.TypeDecision,
		Content:    content,
		Symbol:     symbol,
		Importance: decision.Confidence,
		Metadata: map[string]interface{}{
			"workflow": string(st.Workflow),
			"tier":     string(agents.TierFor(decision.Confidence)),
		},
	}
	if err := se.memories.Remember(ctx, m); err != nil {
		se.Log().Warnw("Failed to store decision memory", "run_id", runID, "error", err)
	}
}

func (se *StrategyEvaluator) recordRun(
	ctx context.Context,
	st *strategy.Strategy,
	runID, symbol string,
	started time.Time,
	elapsed time.Duration,
	state *agents.SharedState,
	runErr error,
) {
	if se.stats == nil {
		return
	}

	event := &stats.AgentRunEvent{
		RunID:      runID,
		StrategyID: st.ID,
		Workflow:   string(st.Workflow),
		Symbol:     symbol,
		StartedAt:  started.UTC(),
		DurationMs: int(elapsed.Milliseconds()),
		Success:    runErr == nil,
	}
	if state != nil {
		event.Steps = state.Iteration
		if state.FinalDecision != nil {
			event.DecisionKind = string(state.FinalDecision.Kind)
			event.Confidence = state.FinalDecision.Confidence
		}
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}

	if err := se.stats.InsertAgentRun(ctx, event); err != nil {
		se.Log().Warnw("Failed to record run stats", "run_id", runID, "error", err)
	}
}

func (se *StrategyEvaluator) emitSignal(ctx context.Context, st *strategy.Strategy, runID, symbol string, decision *agents.Decision) error {
	sig := &signal.Signal{
		StrategyID:  st.ID,
		RunID:       runID,
		Symbol:      symbol,
		Kind:        signal.Kind(decision.Kind),
		Confidence:  decision.Confidence,
		Tier:        string(agents.TierFor(decision.Confidence)),
		Reasoning:   signal.StringList(decision.Reasoning),
		RiskFactors: signal.StringList(decision.RiskFactors),
	}

	if se.quotes != nil {
		if quote, err := se.quotes.Get(ctx, symbol); err == nil && quote.Price > 0 {
			sig.Price = decimal.NewFromFloat(quote.Price)
		}
	}
	if v, ok := supportingFloat(decision, "target_price"); ok {
		sig.TargetPrice = decimal.NewNullDecimal(decimal.NewFromFloat(v))
	}
	if v, ok := supportingFloat(decision, "stop_loss"); ok {
		sig.StopLoss = decimal.NewNullDecimal(decimal.NewFromFloat(v))
	}

	if err := se.signals.Record(ctx, sig); err != nil {
		return errors.Wrap(err, "record signal")
	}

	metrics.RecordSignal(st.Name, string(sig.Kind), sig.Tier)

	if se.bus != nil {
		se.bus.SignalGenerated(ctx, sig)
		se.bus.NotificationDispatch(ctx, sig.ID)
	}

	return nil
}

func paramsString(st *strategy.Strategy) string {
	if len(st.Parameters) == 0 || string(st.Parameters) == "{}" {
		return ""
	}
	return string(st.Parameters)
}

func supportingFloat(decision *agents.Decision, key string) (float64, bool) {
	raw, ok := decision.SupportingData[key]
	if !ok {
		return 0, false
	}
	v, ok := raw.(float64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
