package bootstrap

import (
	"context"
	"sync"

	chclient "barometer/internal/adapters/clickhouse"
	"barometer/internal/adapters/config"
	"barometer/internal/adapters/kafka"
	"barometer/internal/adapters/llm"
	pgclient "barometer/internal/adapters/postgres"
	redisclient "barometer/internal/adapters/redis"
	"barometer/internal/adapters/telegram"
	"barometer/internal/api"
	"barometer/internal/api/health"
	"barometer/internal/consumers"
	"barometer/internal/domain/calibration"
	"barometer/internal/domain/cluster"
	"barometer/internal/domain/quote"
	"barometer/internal/domain/report"
	calibrationsvc "barometer/internal/services/calibration"
	reportsvc "barometer/internal/services/report"
	"barometer/internal/workers"
	"barometer/pkg/errors"
	"barometer/pkg/logger"
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
	CH    *chclient.Client
	Redis *redisclient.Client

	// Domain Layer - Repositories
	Repos *Repositories

	// Domain Layer - Services
	Services *Services

	// External Adapters
	Adapters *Adapters

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
	Quote       quote.Repository       // Classified quote corpus (ClickHouse)
	Cluster     cluster.Repository     // Thematic clusters (ClickHouse)
	Report      report.Repository      // Report archive (ClickHouse)
	Calibration calibration.Repository // Intensity weight artifacts (Postgres)
}

// Services groups all domain services
type Services struct {
	Report      *reportsvc.Service      // Report pipeline orchestrator
	Calibration *calibrationsvc.Service // Intensity weight calibration
}

// Adapters groups all external adapters
type Adapters struct {
	QuoteConsumer *kafka.Consumer    // Classified quote ingestion topic
	LLMProvider   llm.Provider       // Commentary backend (nil when disabled)
	Notifier      *telegram.Notifier // Alert digest channel (nil when disabled)
}

// Application groups application layer components
type Application struct {
	HTTPServer     *api.Server
	HealthHandler  *health.Handler
	ReportsHandler *api.ReportsHandler
}

// Background groups all background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
	QuoteIngest     *consumers.QuoteConsumer
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Services:    &Services{},
		Adapters:    &Adapters{},
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
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts all background components
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	// Start quote ingestion consumer
	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Background.QuoteIngest.Start(c.Context); err != nil && c.Context.Err() == nil {
			c.Log.Error("quote consumer failed", "error", err)
		}
	}()
	c.Log.Info("✓ Quote ingestion started", "topic", c.Config.Kafka.QuotesTopic)

	// Start background workers (report generation cadence)
	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	// Start HTTP server
	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Info("✓ All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	// Cancel application context to signal all components to stop
	c.Cancel()

	// Perform coordinated cleanup with explicit order
	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Background.WorkerScheduler,
		c.Adapters.QuoteConsumer,
		c.PG,
		c.CH,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}
