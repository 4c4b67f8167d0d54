package llm

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// Compile-time check
var _ Provider = (*GeminiProvider)(nil)

// GeminiProvider generates commentary through the Gemini API.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	log     *logger.Logger
}

// NewGeminiProvider creates a new Gemini commentary provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string, requestsPerMinute int, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize genai client")
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		limiter: newMinuteLimiter(requestsPerMinute),
		timeout: timeout,
		log:     logger.Get().With("component", "gemini_commentary", "model", model),
	}, nil
}

// Complete sends the prompts as one generation request and returns the reply.
// Gemini has no separate system role here; the system prompt rides as the
// generation config's system instruction.
func (p *GeminiProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "prompt cannot be empty")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limiter wait")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.4)),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
			},
		},
	}, cfg)
	if err != nil {
		return "", errors.Wrap(err, "gemini API call failed")
	}

	var out strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				out.WriteString(part.Text)
			}
		}
		if out.Len() > 0 {
			break
		}
	}
	if out.Len() == 0 {
		return "", errors.Wrapf(errors.ErrInternal, "no completion returned")
	}

	text := strings.TrimSpace(out.String())
	p.log.Debug("Generated commentary",
		"prompt_length", len(prompt),
		"response_length", len(text),
	)
	return text, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}
