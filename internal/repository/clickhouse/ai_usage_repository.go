package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"minerva/internal/domain/ai_usage"
	"minerva/pkg/clickhouse"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// AIUsageRepository implements ai_usage.Repository for ClickHouse.
// Uses a batch writer because single row inserts are inefficient in ClickHouse.
type AIUsageRepository struct {
	conn        driver.Conn
	batchWriter *clickhouse.BatchWriter[*ai_usage.UsageLog]
}

// NewAIUsageRepository creates a new AI usage repository with batch writer
func NewAIUsageRepository(conn driver.Conn) *AIUsageRepository {
	repo := &AIUsageRepository{
		conn: conn,
	}

	repo.batchWriter = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig[*ai_usage.UsageLog]{
		Flush:        repo.flushBatch,
		Table:        "ai_usage",
		MaxBatchSize: 500,
		MaxAge:       5 * time.Second,
	})

	return repo
}

// Start begins the background flush loop
func (r *AIUsageRepository) Start(ctx context.Context) {
	r.batchWriter.Start(ctx)
}

// Stop gracefully shuts down the batch writer
func (r *AIUsageRepository) Stop(ctx context.Context) error {
	return r.batchWriter.Stop(ctx)
}

// Store saves a usage log entry (buffered, not immediate)
func (r *AIUsageRepository) Store(ctx context.Context, log *ai_usage.UsageLog) error {
	return r.batchWriter.Add(ctx, log)
}

func (r *AIUsageRepository) flushBatch(ctx context.Context, batch []*ai_usage.UsageLog) error {
	if len(batch) == 0 {
		return nil
	}

	log := logger.Get().With("component", "ai_usage_batch")

	query := `
		INSERT INTO ai_usage (
			timestamp, event_id, run_id, strategy_id,
			agent_id, agent_type, workflow,
			provider, model_id, model_family,
			prompt_tokens, completion_tokens, total_tokens,
			input_cost_usd, output_cost_usd, total_cost_usd,
			tool_calls_count, reasoning_step, latency_ms, created_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?
		)
	`

	start := time.Now()

	stmt, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}
	defer stmt.Close()

	for _, usageLog := range batch {
		err := stmt.Append(
			usageLog.Timestamp, usageLog.EventID, usageLog.RunID, usageLog.StrategyID,
			usageLog.AgentID, usageLog.AgentType, usageLog.Workflow,
			usageLog.Provider, usageLog.ModelID, usageLog.ModelFamily,
			usageLog.PromptTokens, usageLog.CompletionTokens, usageLog.TotalTokens,
			usageLog.InputCostUSD, usageLog.OutputCostUSD, usageLog.TotalCostUSD,
			usageLog.ToolCallsCount, usageLog.ReasoningStep, usageLog.LatencyMs, usageLog.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append to batch")
		}
	}

	if err := stmt.Send(); err != nil {
		return errors.Wrap(err, "failed to send batch")
	}

	log.Infow("AI usage batch inserted", "rows", len(batch), "duration", time.Since(start))
	return nil
}

// GetStrategyDailyCost returns total cost for a strategy on a specific day
func (r *AIUsageRepository) GetStrategyDailyCost(ctx context.Context, strategyID string, date time.Time) (float64, error) {
	query := `
		SELECT sum(total_cost_usd) as total_cost
		FROM ai_usage
		WHERE strategy_id = ? AND toDate(timestamp) = toDate(?)
	`

	var totalCost float64
	err := r.conn.QueryRow(ctx, query, strategyID, date).Scan(&totalCost)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get strategy daily cost")
	}

	return totalCost, nil
}

// GetProviderCosts returns costs grouped by provider for a time range
func (r *AIUsageRepository) GetProviderCosts(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT provider, sum(total_cost_usd) as total_cost
		FROM ai_usage
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY provider
		ORDER BY total_cost DESC
	`

	return r.groupedCosts(ctx, query, from, to)
}

// GetAgentCosts returns costs grouped by agent type for a time range
func (r *AIUsageRepository) GetAgentCosts(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT agent_type, sum(total_cost_usd) as total_cost
		FROM ai_usage
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY agent_type
		ORDER BY total_cost DESC
	`

	return r.groupedCosts(ctx, query, from, to)
}

// GetModelCosts returns costs grouped by model for a provider in a time range
func (r *AIUsageRepository) GetModelCosts(ctx context.Context, provider string, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT model_id, sum(total_cost_usd) as total_cost
		FROM ai_usage
		WHERE provider = ? AND timestamp BETWEEN ? AND ?
		GROUP BY model_id
		ORDER BY total_cost DESC
	`

	return r.groupedCosts(ctx, query, provider, from, to)
}

func (r *AIUsageRepository) groupedCosts(ctx context.Context, query string, args ...interface{}) (map[string]float64, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query costs")
	}
	defer rows.Close()

	costs := make(map[string]float64)
	for rows.Next() {
		var key string
		var cost float64
		if err := rows.Scan(&key, &cost); err != nil {
			return nil, errors.Wrap(err, "failed to scan cost row")
		}
		costs[key] = cost
	}

	return costs, nil
}
