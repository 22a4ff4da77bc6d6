package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "minerva_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_agent_calls_total",
			Help: "Total number of agent calls",
		},
		[]string{"agent", "model", "status"}, // status: success|error|rate_limited
	)

	AgentCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_agent_cost_usd",
			Help: "Total AI cost in USD",
		},
		[]string{"agent", "strategy", "model"},
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output|total
	)

	// Workflow metrics
	WorkflowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_workflow_runs_total",
			Help: "Total number of workflow executions",
		},
		[]string{"workflow", "status"}, // status: success|error|timeout
	)

	WorkflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_workflow_duration_seconds",
			Help:    "End-to-end workflow execution duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"workflow"},
	)

	WorkflowNodeExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_workflow_node_executions_total",
			Help: "Total number of node executions inside workflows",
		},
		[]string{"workflow", "node", "status"},
	)

	// Signal metrics
	SignalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_signals_generated_total",
			Help: "Total number of signals generated",
		},
		[]string{"strategy", "kind", "tier"},
	)

	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_notifications_sent_total",
			Help: "Total number of notifications delivered",
		},
		[]string{"channel", "status"}, // status: sent|failed
	)

	SubscriptionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "minerva_subscriptions_active",
			Help: "Current number of active subscriptions",
		},
		[]string{"strategy"},
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"}, // status: success|error
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"}, // database: postgres|clickhouse|redis
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"database", "operation"},
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_kafka_messages_total",
			Help: "Total Kafka messages produced/consumed",
		},
		[]string{"topic", "direction", "status"}, // direction: produced|consumed
	)

	WebSocketConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "minerva_websocket_connections",
			Help: "Current number of active WebSocket subscriber connections",
		},
		[]string{"channel"},
	)

	TelegramCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_telegram_commands_total",
			Help: "Total Telegram commands processed",
		},
		[]string{"command", "status"},
	)

	TelegramCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_telegram_command_duration_seconds",
			Help:    "Telegram command handling duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"command"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Worker metrics
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	// Agent metrics
	prometheus.MustRegister(AgentCalls)
	prometheus.MustRegister(AgentCost)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	// Workflow metrics
	prometheus.MustRegister(WorkflowRuns)
	prometheus.MustRegister(WorkflowDuration)
	prometheus.MustRegister(WorkflowNodeExecutions)

	// Signal metrics
	prometheus.MustRegister(SignalsGenerated)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(SubscriptionsActive)

	// Tool metrics
	prometheus.MustRegister(ToolExecutions)
	prometheus.MustRegister(ToolLatency)

	// Database metrics
	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)

	// System metrics
	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(WebSocketConnections)
	prometheus.MustRegister(TelegramCommands)
	prometheus.MustRegister(TelegramCommandDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordAgentCall records an agent invocation
func RecordAgentCall(agent, model string, latency time.Duration, cost float64, tokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AgentCalls.WithLabelValues(agent, model, status).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(latency.Seconds())

	if cost > 0 {
		AgentCost.WithLabelValues(agent, "", model).Add(cost)
	}

	if tokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "total").Add(float64(tokens))
	}
}

// RecordWorkflowRun records a completed workflow execution
func RecordWorkflowRun(workflow string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkflowRuns.WithLabelValues(workflow, status).Inc()
	WorkflowDuration.WithLabelValues(workflow).Observe(duration.Seconds())
}

// RecordSignal records a generated signal
func RecordSignal(strategy, kind, tier string) {
	SignalsGenerated.WithLabelValues(strategy, kind, tier).Inc()
}

// RecordNotification records a delivery attempt outcome
func RecordNotification(channel string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	NotificationsSent.WithLabelValues(channel, status).Inc()
}

// RecordToolExecution records a tool execution
func RecordToolExecution(tool string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ToolExecutions.WithLabelValues(tool, status).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordTelegramCommand records a processed bot command
func RecordTelegramCommand(command string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	TelegramCommands.WithLabelValues(command, status).Inc()
	TelegramCommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}
