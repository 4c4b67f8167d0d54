package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"barometer/internal/analytics"
	"barometer/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Telegram      TelegramConfig
	LLM           LLMConfig
	Report        ReportConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
	Analytics     analytics.Config
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"barometer"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
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

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"barometer"`
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
	Brokers     []string `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID     string   `envconfig:"KAFKA_GROUP_ID" default:"barometer-analytics"`
	QuotesTopic string   `envconfig:"KAFKA_QUOTES_TOPIC" default:"sentiment.quotes.classified"`
}

// TelegramConfig configures the alert digest channel. The notifier is
// optional: without a token and chat ID the service runs with delivery off.
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// Enabled reports whether enough is configured to send digests.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// LLMConfig selects and configures the commentary provider.
// Provider "none" disables commentary entirely.
type LLMConfig struct {
	Provider          string        `envconfig:"LLM_PROVIDER" default:"none"`
	OpenAIKey         string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GeminiKey         string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	RequestsPerMinute int           `envconfig:"LLM_REQUESTS_PER_MINUTE" default:"10"`
	RequestTimeout    time.Duration `envconfig:"LLM_REQUEST_TIMEOUT" default:"30s"`
}

// ReportConfig holds orchestration knobs for report generation:
// how much corpus to load, how long the latest report stays cached,
// and when a calibration artifact counts as stale.
type ReportConfig struct {
	WindowDays        int           `envconfig:"REPORT_WINDOW_DAYS" default:"30"`
	CacheTTL          time.Duration `envconfig:"REPORT_CACHE_TTL" default:"24h"`
	CalibrationMaxAge time.Duration `envconfig:"CALIBRATION_MAX_AGE" default:"2160h"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers.
type WorkerConfig struct {
	// Quotes arrive once per day, so a daily cadence is the natural default.
	ReportInterval time.Duration `envconfig:"WORKER_REPORT_INTERVAL" default:"24h"`

	// Generate a report immediately on startup instead of waiting a full
	// interval. Useful after deploys and in development.
	ReportOnStart bool `envconfig:"WORKER_REPORT_ON_START" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that envconfig tags cannot express.
// Called once at startup; any error is fatal before the pipeline runs.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.NewValidationError("HTTP_PORT", "must be a valid TCP port", fmt.Sprintf("%d", c.Server.Port))
	}
	if c.Report.WindowDays < 1 {
		return errors.NewValidationError("REPORT_WINDOW_DAYS", "must be at least 1", fmt.Sprintf("%d", c.Report.WindowDays))
	}
	if c.Report.CacheTTL <= 0 {
		return errors.NewValidationError("REPORT_CACHE_TTL", "must be positive", c.Report.CacheTTL.String())
	}
	if c.Workers.ReportInterval <= 0 {
		return errors.NewValidationError("WORKER_REPORT_INTERVAL", "must be positive", c.Workers.ReportInterval.String())
	}
	switch c.LLM.Provider {
	case "none":
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return errors.NewValidationError("OPENAI_API_KEY", "required when LLM_PROVIDER=openai", "")
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			return errors.NewValidationError("GEMINI_API_KEY", "required when LLM_PROVIDER=gemini", "")
		}
	default:
		return errors.NewValidationError("LLM_PROVIDER", "must be one of none, openai, gemini", c.LLM.Provider)
	}
	if c.LLM.Provider != "none" && c.LLM.RequestsPerMinute < 1 {
		return errors.NewValidationError("LLM_REQUESTS_PER_MINUTE", "must be at least 1", fmt.Sprintf("%d", c.LLM.RequestsPerMinute))
	}
	return c.Analytics.Validate()
}
