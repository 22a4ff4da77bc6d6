package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"minerva/internal/adapters/ai"
	chclient "minerva/internal/adapters/clickhouse"
	"minerva/internal/adapters/config"
	"minerva/internal/adapters/embeddings"
	errnoop "minerva/internal/adapters/errors/noop"
	"minerva/internal/adapters/errors/sentry"
	"minerva/internal/adapters/kafka"
	"minerva/internal/adapters/marketdata"
	pgclient "minerva/internal/adapters/postgres"
	redisclient "minerva/internal/adapters/redis"
	telegram "minerva/internal/adapters/telegram"
	"minerva/internal/agents"
	"minerva/internal/api"
	"minerva/internal/api/health"
	"minerva/internal/api/ws"
	"minerva/internal/consumers"
	"minerva/internal/domain/memory"
	"minerva/internal/domain/notification"
	"minerva/internal/domain/signal"
	strategyDomain "minerva/internal/domain/strategy"
	"minerva/internal/domain/subscription"
	"minerva/internal/domain/user"
	"minerva/internal/events"
	"minerva/internal/metrics"
	chrepo "minerva/internal/repository/clickhouse"
	pgrepo "minerva/internal/repository/postgres"
	redisrepo "minerva/internal/repository/redis"
	marketdatasvc "minerva/internal/services/market_data"
	"minerva/internal/tools"
	"minerva/internal/tools/indicators"
	"minerva/internal/tools/market"
	"minerva/internal/tools/shared"
	"minerva/internal/workers"
	"minerva/internal/workers/evaluation"
	"minerva/internal/workers/ingest"
	"minerva/internal/workers/maintenance"
	notifworkers "minerva/internal/workers/notifications"
	"minerva/internal/workflow"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
	tg "minerva/pkg/telegram"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled, using noop tracker")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnw("Sentry init failed, falling back to noop tracker", "error", err)
		return errnoop.New()
	}

	log.Infow("Sentry error tracking enabled", "environment", cfg.ErrorTracking.Environment)
	return tracker
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure initializes data stores (Postgres, ClickHouse, Redis)
func (c *Container) MustInitInfrastructure() {
	var err error

	// PostgreSQL
	c.Log.Info("Connecting to PostgreSQL...")
	c.PG, err = pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		c.Log.Fatalf("failed to connect postgres: %v", err)
	}
	c.Log.Info("✓ PostgreSQL connected")

	// ClickHouse is optional; run stats and market data history are
	// skipped when it is not configured
	if c.Config.ClickHouse.Enabled() {
		c.Log.Info("Connecting to ClickHouse...")
		c.CH, err = chclient.NewClient(c.Config.ClickHouse)
		if err != nil {
			c.Log.Fatalf("failed to connect clickhouse: %v", err)
		}
		c.Log.Info("✓ ClickHouse connected")
	} else {
		c.Log.Info("ClickHouse not configured, analytics sink disabled")
	}

	// Redis
	c.Log.Info("Connecting to Redis...")
	c.Redis, err = redisclient.NewClient(c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Log.Info("✓ Redis connected")
}

// ========================================
// Phase 3: Domain Layer - Repositories
// ========================================

// MustInitRepositories initializes all domain repositories
func (c *Container) MustInitRepositories() {
	db := c.PG.DB()

	c.Repos.User = pgrepo.NewUserRepository(db)
	c.Repos.Strategy = pgrepo.NewStrategyRepository(db)
	c.Repos.Subscription = pgrepo.NewSubscriptionRepository(db)
	c.Repos.Signal = pgrepo.NewSignalRepository(db)
	c.Repos.Notification = pgrepo.NewNotificationRepository(db)
	c.Repos.Memory = pgrepo.NewMemoryRepository(db)

	if c.CH != nil {
		c.Repos.MarketData = chrepo.NewMarketDataRepository(c.CH.Conn())
		c.Repos.Stats = chrepo.NewStatsRepository(c.CH.Conn())
		c.Repos.AIUsage = chrepo.NewAIUsageRepository(c.CH.Conn())
	}

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters initializes Kafka, Redis helpers, market data and AI adapters
func (c *Container) MustInitAdapters() {
	// Kafka producer + event bus
	c.Adapters.KafkaProducer = kafka.NewProducer(c.Config.Kafka.Brokers)
	c.Adapters.EventBus = events.NewBus(c.Adapters.KafkaProducer, c.Config.App.Name)

	// Kafka consumers
	c.Adapters.NotificationConsumer = kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: c.Config.Kafka.Brokers,
		GroupID: c.Config.Kafka.GroupID + ".notifications",
		Topic:   kafka.TopicNotificationDispatch,
	})
	c.Adapters.EvaluationConsumer = kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: c.Config.Kafka.Brokers,
		GroupID: c.Config.Kafka.GroupID + ".evaluation",
		Topic:   kafka.TopicEvaluationRequested,
	})

	// Redis helpers
	c.Adapters.QuoteCache = redisrepo.NewQuoteCache(c.Redis.Client())
	c.Adapters.Locker = redisrepo.NewLocker(c.Redis.Client())

	// Upstream market data source
	c.Adapters.MarketProvider = marketdata.NewClient(marketdata.Config{})

	// Embeddings (optional, memory works degraded without them)
	if c.Config.AI.OpenAIKey != "" {
		provider, err := embeddings.NewProvider(embeddings.Config{
			Provider: embeddings.ProviderOpenAI,
			APIKey:   c.Config.AI.OpenAIKey,
			Model:    c.Config.AI.EmbeddingModel,
			Timeout:  c.Config.AI.RequestTimeout,
		})
		if err != nil {
			c.Log.Fatalf("failed to init embedding provider: %v", err)
		}
		c.Adapters.EmbeddingProvider = provider
	} else {
		c.Log.Info("No OpenAI key, decision memory embeddings disabled")
	}

	// Telegram bot (optional)
	if c.Config.Telegram.Enabled() {
		bot, err := telegram.NewBot(telegram.Config{
			Token: c.Config.Telegram.BotToken,
			Debug: c.Config.App.Debug,
		}, c.Log)
		if err != nil {
			c.Log.Fatalf("failed to init telegram bot: %v", err)
		}
		c.Adapters.TelegramBot = bot
	} else {
		c.Log.Info("No Telegram token, bot channel disabled")
	}

	c.Log.Info("✓ Adapters initialized")
}

// ========================================
// Phase 5: Domain Layer - Services
// ========================================

// MustInitServices initializes domain services
func (c *Container) MustInitServices() {
	c.Services.User = user.NewService(c.Repos.User)
	c.Services.Strategy = strategyDomain.NewService(c.Repos.Strategy)
	c.Services.Subscription = subscription.NewService(c.Repos.Subscription, c.Repos.User)
	c.Services.Signal = signal.NewService(c.Repos.Signal)

	if c.Adapters.EmbeddingProvider != nil {
		c.Services.Memory = memory.NewService(c.Repos.Memory, c.Adapters.EmbeddingProvider)
	} else {
		c.Log.Info("No embedding provider, decision memory disabled")
	}

	if c.Repos.MarketData != nil {
		c.Services.MarketData = marketdatasvc.NewService(c.Repos.MarketData, c.Log)
	}

	c.Log.Info("✓ Services initialized")
}

// ========================================
// Phase 6: Business Logic
// ========================================

// MustInitBusiness initializes metrics, tools, AI providers, agents and workflows
func (c *Container) MustInitBusiness() {
	// Prometheus metrics
	metrics.Init()
	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, c.PG.DB(), c.Redis.Client()))

	// Tool registry
	c.Business.ToolRegistry = tools.NewRegistry()

	toolDeps := shared.Deps{
		MarketDataRepo: c.Repos.MarketData,
		MarketProvider: c.Adapters.MarketProvider,
		StatsRepo:      c.Repos.Stats,
		Redis:          c.Redis,
		Log:            c.Log,
	}
	if err := registerTools(c.Business.ToolRegistry, toolDeps); err != nil {
		c.Log.Fatalf("failed to register tools: %v", err)
	}

	// AI chat providers
	providerRegistry, err := ai.BuildRegistry(c.Config.AI)
	if err != nil {
		c.Log.Fatalf("failed to build AI provider registry: %v", err)
	}
	c.Business.ProviderRegistry = providerRegistry

	// Agents
	c.Business.AgentRegistry = agents.NewRegistry()
	if err := agents.RegisterDefaults(c.Business.AgentRegistry); err != nil {
		c.Log.Fatalf("failed to register agents: %v", err)
	}

	agentDeps := agents.Deps{
		Providers: c.Business.ProviderRegistry,
		Tools:     c.Business.ToolRegistry,
		Defaults:  c.Config.Agents,
		AI:        c.Config.AI,
		Log:       c.Log,
	}
	if c.Repos.AIUsage != nil {
		agentDeps.Usage = c.Repos.AIUsage
	}
	c.Business.AgentFactory = agents.NewFactory(c.Business.AgentRegistry, agentDeps)

	// Workflow runners, one compiled graph per workflow kind
	c.Business.Runners = map[strategyDomain.WorkflowKind]*workflow.Runner{}

	strategyRunner, err := workflow.StrategyDecision(c.Business.AgentFactory, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to build strategy decision workflow: %v", err)
	}
	c.Business.Runners[strategyDomain.WorkflowStrategyDecision] = strategyRunner

	technicalRunner, err := workflow.TechnicalAnalysis(c.Business.AgentFactory, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to build technical analysis workflow: %v", err)
	}
	c.Business.Runners[strategyDomain.WorkflowTechnicalAnalysis] = technicalRunner

	researchRunner, err := workflow.Research(c.Business.AgentFactory, c.Log, c.Config.Agents.WorkflowMaxSteps)
	if err != nil {
		c.Log.Fatalf("failed to build research workflow: %v", err)
	}
	c.Business.Runners[strategyDomain.WorkflowResearch] = researchRunner

	c.Log.Infow("✓ Business logic initialized",
		"tools", len(c.Business.ToolRegistry.List()),
		"agents", len(c.Business.AgentRegistry.List()),
		"ai_providers", c.Business.ProviderRegistry.List(),
		"workflows", len(c.Business.Runners),
	)
}

// registerTools populates the registry with the built-in tool set.
// Registration is fail-fast: a duplicate name aborts startup.
func registerTools(registry *tools.Registry, deps shared.Deps) error {
	toolset := []tools.Tool{
		market.NewGetStockPriceTool(deps),
		market.NewGetKlineTool(deps),
		market.NewGetMarketOverviewTool(deps),
		indicators.NewSMATool(deps),
		indicators.NewEMATool(deps),
		indicators.NewRSITool(deps),
		indicators.NewMACDTool(deps),
		indicators.NewBollingerTool(deps),
	}
	for _, t := range toolset {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// ========================================
// Phase 7: Application Layer
// ========================================

// MustInitApplication initializes notification fan-out, HTTP API and Telegram
func (c *Container) MustInitApplication() {
	// WebSocket hub for live signal push
	c.Application.Hub = ws.NewHub(c.Log)

	// Notification senders; channels without configuration are skipped
	var senders []notification.Sender
	senders = append(senders, ws.NewSender(c.Application.Hub))
	if c.Adapters.TelegramBot != nil {
		senders = append(senders, telegram.NewNotifier(
			c.Adapters.TelegramBot,
			c.Services.Strategy,
			c.TemplateRegistry(),
			c.Log,
		))
	}
	c.Services.Notification = notification.NewService(
		c.Repos.Notification,
		c.Repos.User,
		c.Services.Subscription,
		senders,
	)

	// Health probes; postgres and redis gate readiness, clickhouse
	// only degrades the detailed report
	c.Application.HealthHandler = health.New(c.Log, c.Config.App.Name, c.Config.App.Version).
		AddCheck("postgres", true, c.PG.DB().PingContext).
		AddCheck("redis", true, func(ctx context.Context) error {
			return c.Redis.Client().Ping(ctx).Err()
		})
	if c.CH != nil {
		c.Application.HealthHandler.AddCheck("clickhouse", false, c.CH.Conn().Ping)
	}

	// HTTP server with REST and websocket endpoints
	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:        c.Config.API.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, c.Application.HealthHandler, api.NewHandlers(
		c.Services.Strategy,
		c.Services.Signal,
		c.Services.Subscription,
		c.Log,
	), c.Application.Hub, c.Log)

	// Telegram command surface
	if c.Adapters.TelegramBot != nil {
		registry := tg.NewCommandRegistry(c.Adapters.TelegramBot, c.Log)
		registry.Use(tg.MetricsMiddleware(metrics.RecordTelegramCommand))

		c.Application.TelegramCommands = telegram.NewCommands(
			c.Services.User,
			c.Services.Strategy,
			c.Services.Subscription,
			c.Services.Signal,
			registry,
			c.Log,
		)
		c.Application.TelegramCommands.RegisterAll()

		c.Application.TelegramHandler = telegram.NewHandler(
			c.Adapters.TelegramBot,
			registry,
			c.Services.User,
			c.Log,
		)
		c.Adapters.TelegramBot.SetMessageHandler(c.Application.TelegramHandler.HandleUpdate)
	}

	c.Log.Info("✓ Application layer initialized")
}

// ========================================
// Phase 8: Background Processing
// ========================================

// MustInitBackground initializes workers and event consumers
func (c *Container) MustInitBackground() {
	scheduler := workers.NewScheduler()

	var decisionMemory evaluation.DecisionMemory
	if c.Services.Memory != nil {
		decisionMemory = c.Services.Memory
	}

	evaluator := evaluation.NewStrategyEvaluator(
		c.Services.Strategy,
		c.Services.Signal,
		c.Business.Runners,
		c.Adapters.Locker,
		c.Adapters.EventBus,
		c.Repos.Stats,
		c.Adapters.QuoteCache,
		decisionMemory,
		c.Config.Workers.StrategyEvalInterval,
		true,
	)
	scheduler.RegisterWorker(evaluator)

	if c.Services.Memory != nil {
		scheduler.RegisterWorker(maintenance.NewMemoryPruner(
			c.Services.Memory,
			c.Config.Workers.MemoryPruneInterval,
			true,
		))
	}

	scheduler.RegisterWorker(notifworkers.NewRetryWorker(
		c.Services.Notification,
		c.Services.Signal,
		c.Config.Workers.RetrySweepInterval,
		true,
	))

	if c.Adapters.TelegramBot != nil {
		scheduler.RegisterWorker(notifworkers.NewDigestWorker(
			c.Services.User,
			c.Services.Subscription,
			c.Services.Strategy,
			c.Services.Signal,
			c.Adapters.TelegramBot,
			c.Adapters.Locker,
			c.Config.Workers.DigestCheckInterval,
			true,
		))
	}

	if c.Services.MarketData != nil {
		scheduler.RegisterWorker(ingest.NewQuoteRefresher(
			c.Services.Strategy,
			c.Adapters.MarketProvider,
			c.Services.MarketData,
			c.Adapters.QuoteCache,
			c.Config.Workers.IngestInterval,
			true,
		))
	}

	c.Background.WorkerScheduler = scheduler

	// stalled or persistently failing workers degrade /health
	c.Application.HealthHandler.AddCheck("workers", false, func(ctx context.Context) error {
		if stalled := scheduler.UnhealthyWorkers(); len(stalled) > 0 {
			return fmt.Errorf("unhealthy workers: %s", strings.Join(stalled, ", "))
		}
		return nil
	})

	c.Background.NotificationSvc = consumers.NewNotificationConsumer(
		c.Adapters.NotificationConsumer,
		c.Services.Signal,
		c.Services.Notification,
	)
	c.Background.EvaluationSvc = consumers.NewEvaluationConsumer(
		c.Adapters.EvaluationConsumer,
		c.Services.Strategy,
		evaluator,
	)

	c.Log.Infow("✓ Background processing initialized", "workers", len(scheduler.GetWorkers()))
}
