package llm

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"barometer/pkg/errors"
	"barometer/pkg/logger"
)

// Compile-time check
var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider generates commentary through the official OpenAI Go SDK.
type OpenAIProvider struct {
	client  openai.Client // NewClient returns Client (not *Client)
	model   openai.ChatModel
	limiter *rate.Limiter
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIProvider creates a new OpenAI commentary provider.
func NewOpenAIProvider(apiKey, model string, requestsPerMinute int, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "openai API key is required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   openai.ChatModel(model),
		limiter: newMinuteLimiter(requestsPerMinute),
		timeout: timeout,
		log:     logger.Get().With("component", "openai_commentary", "model", model),
	}, nil
}

// Complete sends the prompts as one chat completion and returns the reply.
func (p *OpenAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "prompt cannot be empty")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limiter wait")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.4),
		MaxTokens:   openai.Int(400),
	})
	if err != nil {
		return "", errors.Wrap(err, "openai API call failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrapf(errors.ErrInternal, "no completion returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	p.log.Debug("Generated commentary",
		"prompt_length", len(prompt),
		"response_length", len(text),
		"tokens_used", resp.Usage.TotalTokens,
	)
	return text, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}
