package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barometer/internal/analytics"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Report.WindowDays = 30
	cfg.Report.CacheTTL = 24 * time.Hour
	cfg.Report.CalibrationMaxAge = 90 * 24 * time.Hour
	cfg.Workers.ReportInterval = 24 * time.Hour
	cfg.LLM.Provider = "none"
	cfg.Analytics = analytics.DefaultConfig()
	return cfg
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidate_LLMProviderNeedsKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.RequestsPerMinute = 10
	assert.Error(t, cfg.Validate(), "openai without key must fail")

	cfg.LLM.OpenAIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "gemini"
	assert.Error(t, cfg.Validate(), "gemini without key must fail")

	cfg.LLM.GeminiKey = "test"
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "claude"
	assert.Error(t, cfg.Validate(), "unknown provider must fail")
}

func TestValidate_RejectsBrokenAnalytics(t *testing.T) {
	cfg := validConfig()
	cfg.Analytics.EMA.Span = 0
	assert.Error(t, cfg.Validate(), "analytics validation must propagate")
}

func TestTelegramEnabled(t *testing.T) {
	var tg TelegramConfig
	assert.False(t, tg.Enabled())

	tg.BotToken = "123:abc"
	assert.False(t, tg.Enabled(), "chat id still missing")

	tg.ChatID = -100123
	assert.True(t, tg.Enabled())
}

func TestPostgresDSN(t *testing.T) {
	pg := PostgresConfig{
		Host: "localhost", Port: 5432,
		User: "barometer", Password: "secret", Database: "barometer",
		SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=barometer password=secret dbname=barometer sslmode=disable",
		pg.DSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", r.Addr())
}
