package bootstrap

import (
	chclient "barometer/internal/adapters/clickhouse"
	"barometer/internal/adapters/config"
	errnoop "barometer/internal/adapters/errors/noop"
	"barometer/internal/adapters/errors/sentry"
	"barometer/internal/adapters/kafka"
	"barometer/internal/adapters/llm"
	pgclient "barometer/internal/adapters/postgres"
	redisclient "barometer/internal/adapters/redis"
	"barometer/internal/adapters/telegram"
	"barometer/internal/api"
	"barometer/internal/api/health"
	"barometer/internal/consumers"
	"barometer/internal/metrics"
	chrepo "barometer/internal/repository/clickhouse"
	pgrepo "barometer/internal/repository/postgres"
	calibrationsvc "barometer/internal/services/calibration"
	reportsvc "barometer/internal/services/report"
	"barometer/internal/workers"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
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
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	c.Config = cfg

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure initializes data stores (Postgres, ClickHouse, Redis)
func (c *Container) MustInitInfrastructure() {
	var err error

	// PostgreSQL (calibration artifacts)
	c.Log.Info("Connecting to PostgreSQL...")
	c.PG, err = pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		c.Log.Fatalf("failed to connect postgres: %v", err)
	}
	c.Log.Info("✓ PostgreSQL connected")

	// ClickHouse (quote corpus, clusters, report archive)
	c.Log.Info("Connecting to ClickHouse...")
	c.CH, err = chclient.NewClient(c.Config.ClickHouse)
	if err != nil {
		c.Log.Fatalf("failed to connect clickhouse: %v", err)
	}
	c.Log.Info("✓ ClickHouse connected")

	// Redis (latest-report cache)
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
	c.Repos.Quote = chrepo.NewQuoteRepository(c.CH.Conn())
	c.Repos.Cluster = chrepo.NewClusterRepository(c.CH.Conn())
	c.Repos.Report = chrepo.NewReportRepository(c.CH.Conn())
	c.Repos.Calibration = pgrepo.NewCalibrationRepository(c.PG.DB())

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters initializes external adapters (Kafka, LLM, Telegram)
func (c *Container) MustInitAdapters() {
	// Kafka consumer for classified quotes
	c.Adapters.QuoteConsumer = provideKafkaConsumer(c.Config, c.Config.Kafka.QuotesTopic, c.Log)

	// Commentary provider. nil means commentary is disabled, which the
	// report service treats as a skipped step, not an error.
	provider, err := llm.NewProvider(c.Context, c.Config.LLM)
	if err != nil {
		c.Log.Fatalf("failed to initialize commentary provider: %v", err)
	}
	c.Adapters.LLMProvider = provider
	if provider != nil {
		c.Log.Info("✓ Commentary provider initialized", "provider", provider.Name())
	} else {
		c.Log.Info("Commentary disabled (LLM_PROVIDER=none)")
	}

	// Telegram digest notifier (optional)
	if c.Config.Telegram.Enabled() {
		notifier, err := telegram.NewNotifier(c.Config.Telegram, c.Log)
		if err != nil {
			c.Log.Fatalf("failed to initialize telegram notifier: %v", err)
		}
		c.Adapters.Notifier = notifier
		c.Log.Info("✓ Telegram notifier initialized")
	} else {
		c.Log.Info("Telegram delivery disabled")
	}
}

// ========================================
// Phase 5: Domain Services
// ========================================

// MustInitServices initializes domain services
func (c *Container) MustInitServices() {
	// Latest-report cache over Redis
	cache := reportsvc.NewRedisCache(c.Redis, c.Config.Report.CacheTTL)

	// The notifier field is a concrete pointer; convert to the service
	// interface only when configured so the disabled case stays a nil
	// interface and the send step is skipped.
	var notifier reportsvc.Notifier
	if c.Adapters.Notifier != nil {
		notifier = c.Adapters.Notifier
	}

	c.Services.Report = reportsvc.NewService(
		c.Config.Report,
		c.Config.Analytics,
		c.Repos.Quote,
		c.Repos.Cluster,
		c.Repos.Calibration,
		c.Repos.Report,
		cache,
		c.Adapters.LLMProvider,
		notifier,
	)

	c.Services.Calibration = calibrationsvc.NewService(
		c.Config.Analytics.Calibration,
		c.Repos.Quote,
		c.Repos.Calibration,
	)

	c.Log.Info("✓ Services initialized")
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication initializes application layer (HTTP, metrics)
func (c *Container) MustInitApplication() {
	// Health handler with a check per data store
	c.Application.HealthHandler = health.New(c.Log, c.Config.App.Name, c.Config.App.Version)
	c.Application.HealthHandler.Register("postgres", c.PG.Health)
	c.Application.HealthHandler.Register("clickhouse", c.CH.Health)
	c.Application.HealthHandler.Register("redis", c.Redis.Health)

	// Latest-report endpoint
	c.Application.ReportsHandler = api.NewReportsHandler(c.Services.Report, c.Log)

	// HTTP server
	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:        c.Config.Server.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, c.Application.HealthHandler, c.Application.ReportsHandler, c.Log)

	// Initialize metrics
	metrics.Init()
	metrics.RegisterCustomCollector(metrics.NewCorpusCollector(c.Log, c.PG.DB(), c.CH.Conn()))
	c.Log.Info("✓ Metrics initialized")

	c.Log.Info("✓ Application layer initialized")
}

// ========================================
// Phase 7: Background Processing
// ========================================

// MustInitBackground initializes background workers and consumers
func (c *Container) MustInitBackground() {
	// Report generation worker
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewReportWorker(
		c.Services.Report,
		c.Config.Workers.ReportInterval,
		c.Config.Workers.ReportOnStart,
	))
	c.Background.WorkerScheduler = scheduler

	// Classified quote ingestion
	c.Background.QuoteIngest = consumers.NewQuoteConsumer(
		c.Adapters.QuoteConsumer,
		c.Repos.Quote,
		c.Repos.Cluster,
		c.Log,
	)

	c.Log.Info("✓ Background processing initialized")
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideKafkaConsumer(cfg *config.Config, topic string, log *logger.Logger) *kafka.Consumer {
	log.Infow("Initializing Kafka consumer", "topic", topic)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   topic,
	})
	log.Infow("✓ Kafka consumer initialized", "topic", topic)
	return consumer
}
