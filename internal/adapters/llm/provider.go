// Package llm provides the commentary providers: thin clients that turn a
// prepared analytics prompt into a short plain-language narrative. Prompt
// construction and degradation policy live in the report service; providers
// only transport text.
package llm

import "context"

// Provider defines the interface for commentary generation backends.
type Provider interface {
	// Complete sends the system and user prompts and returns the generated
	// text. Implementations rate-limit and time-bound the call themselves.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Name returns the provider name (e.g. "openai", "gemini")
	Name() string
}
