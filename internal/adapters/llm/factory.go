package llm

import (
	"context"

	"golang.org/x/time/rate"

	"barometer/internal/adapters/config"
	"barometer/pkg/errors"
)

// NewProvider creates a commentary provider from configuration.
// Provider "none" returns (nil, nil): commentary is disabled, not an error.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "none", "":
		return nil, nil

	case "openai":
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.RequestsPerMinute, cfg.RequestTimeout)

	case "gemini":
		return NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.RequestsPerMinute, cfg.RequestTimeout)

	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"unsupported commentary provider: %s", cfg.Provider)
	}
}

// newMinuteLimiter builds a per-minute rate limiter with burst 1, so a batch
// pipeline cannot spend a whole minute's quota in one go.
func newMinuteLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
}
