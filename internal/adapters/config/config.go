package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"minerva/pkg/errors"
)

type Config struct {
	App           AppConfig
	API           APIConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	ClickHouse    ClickHouseConfig
	Telegram      TelegramConfig
	AI            AIConfig
	Agents        AgentsConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"minerva"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type APIConfig struct {
	Port int `envconfig:"API_PORT" default:"8080"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"minerva"`
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"minerva"`
}

func (c ClickHouseConfig) Enabled() bool {
	return c.Host != ""
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

type AIConfig struct {
	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	DeepSeekKey string `envconfig:"DEEPSEEK_API_KEY"`
	AlibabaKey  string `envconfig:"DASHSCOPE_API_KEY"`

	DefaultProvider string `envconfig:"DEFAULT_AI_PROVIDER" default:"alibaba"`
	DefaultModel    string `envconfig:"DEFAULT_AI_MODEL" default:"qwen3-max"`

	RequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`

	RateLimitEnabled bool `envconfig:"AI_RATE_LIMIT_ENABLED" default:"true"`
	RateLimitPerMin  int  `envconfig:"AI_RATE_LIMIT_PER_MIN" default:"60"`
	RateLimitBurst   int  `envconfig:"AI_RATE_LIMIT_BURST" default:"10"`

	EmbeddingModel string `envconfig:"AI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
}

// AgentsConfig carries runtime limits for the agent/workflow layer.
type AgentsConfig struct {
	Temperature      float64       `envconfig:"AGENT_TEMPERATURE" default:"0.7"`
	MaxTokens        int           `envconfig:"AGENT_MAX_TOKENS" default:"4096"`
	MaxRetries       int           `envconfig:"AGENT_MAX_RETRIES" default:"3"`
	MaxIterations    int           `envconfig:"AGENT_MAX_ITERATIONS" default:"10"`
	ExecutionTimeout time.Duration `envconfig:"AGENT_EXECUTION_TIMEOUT" default:"2m"`

	// WorkflowMaxSteps bounds a single graph run regardless of routing decisions.
	WorkflowMaxSteps int `envconfig:"WORKFLOW_MAX_STEPS" default:"50"`

	EnableMemory bool `envconfig:"AGENT_ENABLE_MEMORY" default:"false"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers.
type WorkerConfig struct {
	// StrategyEvalInterval drives periodic strategy evaluation runs.
	StrategyEvalInterval time.Duration `envconfig:"WORKER_STRATEGY_EVAL_INTERVAL" default:"5m"`

	// IngestInterval drives market snapshot ingestion for the tool cache.
	IngestInterval time.Duration `envconfig:"WORKER_INGEST_INTERVAL" default:"1m"`

	// RetrySweepInterval drives re-delivery of failed notifications.
	RetrySweepInterval time.Duration `envconfig:"WORKER_RETRY_SWEEP_INTERVAL" default:"2m"`

	// DigestCheckInterval drives the daily digest due-time check.
	DigestCheckInterval time.Duration `envconfig:"WORKER_DIGEST_CHECK_INTERVAL" default:"5m"`

	// MemoryPruneInterval drives expired decision memory cleanup.
	MemoryPruneInterval time.Duration `envconfig:"WORKER_MEMORY_PRUNE_INTERVAL" default:"1h"`

	// MaxConcurrentRuns caps in-flight workflow runs started by workers.
	MaxConcurrentRuns int `envconfig:"WORKER_MAX_CONCURRENT_RUNS" default:"5"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
