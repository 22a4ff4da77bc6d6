package bootstrap

import (
	"context"
	"sync"
	"time"

	"minerva/internal/adapters/ai"
	chclient "minerva/internal/adapters/clickhouse"
	"minerva/internal/adapters/config"
	"minerva/internal/adapters/embeddings"
	"minerva/internal/adapters/kafka"
	pgclient "minerva/internal/adapters/postgres"
	redisclient "minerva/internal/adapters/redis"
	telegram "minerva/internal/adapters/telegram"
	"minerva/internal/agents"
	"minerva/internal/api"
	"minerva/internal/api/health"
	"minerva/internal/api/ws"
	"minerva/internal/consumers"
	"minerva/internal/domain/market_data"
	"minerva/internal/domain/memory"
	"minerva/internal/domain/notification"
	"minerva/internal/domain/signal"
	"minerva/internal/domain/stats"
	strategyDomain "minerva/internal/domain/strategy"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/internal/events"
	chrepo "minerva/internal/repository/clickhouse"
	redisrepo "minerva/internal/repository/redis"
	marketdatasvc "minerva/internal/services/market_data"
	"minerva/internal/tools"
	"minerva/internal/workers"
	"minerva/internal/workflow"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
	"minerva/pkg/templates"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer (Data stores)
	PG    *pgclient.Client
	CH    *chclient.Client // nil when ClickHouse is not configured
	Redis *redisclient.Client

	// Domain Layer - Repositories
	Repos *Repositories

	// Domain Layer - Services
	Services *Services

	// External Adapters
	Adapters *Adapters

	// Business Logic
	Business *Business

	// Application Layer
	Application *Application

	// Background Processing
	Background *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups all domain repositories
type Repositories struct {
	User         user.Repository
	Strategy     strategyDomain.Repository
	Subscription subscription.Repository
	Signal       signal.Repository
	Notification notification.Repository
	Memory       memory.Repository

	// ClickHouse-backed; nil when ClickHouse is disabled
	MarketData market_data.Repository
	Stats      stats.Repository
	AIUsage    *chrepo.AIUsageRepository
}

// Services groups all domain services
type Services struct {
	User         *user.Service
	Strategy     *strategyDomain.Service
	Subscription *subscription.Service
	Signal       *signal.Service
	Memory       *memory.Service
	MarketData   *marketdatasvc.Service

	// Notification fans signals out over telegram and websocket; built
	// in the application phase once the delivery channels exist
	Notification *notification.Service
}

// Adapters groups all external adapters
type Adapters struct {
	// Kafka
	KafkaProducer        *kafka.Producer
	NotificationConsumer *kafka.Consumer
	EvaluationConsumer   *kafka.Consumer
	EventBus             *events.Bus

	// Redis-backed helpers
	QuoteCache *redisrepo.QuoteCache
	Locker     *redisrepo.Locker

	// Upstream market data source
	MarketProvider market_data.Provider

	// AI & Embeddings
	EmbeddingProvider embeddings.Provider

	// Telegram; nil when no bot token is configured
	TelegramBot *telegram.Bot
}

// Business groups business logic components
type Business struct {
	ToolRegistry     *tools.Registry
	ProviderRegistry *ai.ProviderRegistry
	AgentRegistry    *agents.Registry
	AgentFactory     *agents.Factory

	// Runners maps each workflow kind to its compiled graph
	Runners map[strategyDomain.WorkflowKind]*workflow.Runner
}

// Application groups application layer components
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
	Hub           *ws.Hub

	TelegramHandler  *telegram.Handler
	TelegramCommands *telegram.Commands
}

// Background groups all background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler

	// Event consumers
	NotificationSvc *consumers.NotificationConsumer
	EvaluationSvc   *consumers.EvaluationConsumer
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Services:    &Services{},
		Adapters:    &Adapters{},
		Business:    &Business{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitBusiness()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts all background components
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	// Start Telegram long polling
	if c.Adapters.TelegramBot != nil {
		if err := c.Adapters.TelegramBot.Start(c.Context); err != nil {
			return errors.Wrap(err, "failed to start telegram bot")
		}
		c.Log.Info("✓ Telegram bot started")
	}

	// Start usage batching before any workflow can run
	if c.Repos.AIUsage != nil {
		c.Repos.AIUsage.Start(c.Context)
	}

	// Start background consumers
	c.startConsumers()

	// Start HTTP server
	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	// Start workers
	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	c.Log.Info("✓ All systems operational")
	return nil
}

// startConsumers starts all Kafka consumers in background goroutines
func (c *Container) startConsumers() {
	var consumerSet []struct {
		name string
		svc  interface{ Start(context.Context) error }
	}
	if c.Background.NotificationSvc != nil {
		consumerSet = append(consumerSet, struct {
			name string
			svc  interface{ Start(context.Context) error }
		}{"notifications", c.Background.NotificationSvc})
	}
	if c.Background.EvaluationSvc != nil {
		consumerSet = append(consumerSet, struct {
			name string
			svc  interface{ Start(context.Context) error }
		}{"evaluation", c.Background.EvaluationSvc})
	}

	started := make([]string, 0, len(consumerSet))
	for _, consumer := range consumerSet {
		svc := consumer.svc
		name := consumer.name
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := svc.Start(c.Context); err != nil && c.Context.Err() == nil {
				c.Log.Errorw("Consumer failed", "consumer", name, "error", err)
			}
		}()
		started = append(started, name)
	}

	c.Log.Infow("✓ Event consumers started", "consumers", started)
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	// Stop accepting Telegram updates before cancelling the context so
	// in-flight commands can finish
	if c.Adapters.TelegramBot != nil {
		c.Adapters.TelegramBot.Stop()
		c.Log.Info("✓ Telegram bot stopped")
	}

	// Cancel application context to signal all other components to stop
	c.Cancel()

	// Flush buffered usage records while ClickHouse is still connected
	if c.Repos.AIUsage != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Repos.AIUsage.Stop(flushCtx); err != nil {
			c.Log.Warnw("Failed to flush usage records", "error", err)
		}
		cancel()
	}

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Background.WorkerScheduler,
		c.Adapters.KafkaProducer,
		map[string]*kafka.Consumer{
			"notifications": c.Adapters.NotificationConsumer,
			"evaluation":    c.Adapters.EvaluationConsumer,
		},
		c.PG,
		c.CH,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}

// GetMetrics returns metrics for observability
func (c *Container) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"tools":  len(c.Business.ToolRegistry.List()),
		"agents": len(c.Business.AgentRegistry.List()),
	}
}

// TemplateRegistry returns the global template registry
func (c *Container) TemplateRegistry() *templates.Registry {
	return templates.Get()
}
