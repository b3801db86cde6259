// Package llm abstracts the model-serving backends the roleplay engine can
// call: Ark via eino, any OpenAI-compatible endpoint, or a local Ollama.
package llm

import "context"

// Turn is one prior message of the conversation window.
type Turn struct {
	Role    string
	Content string
}

// Options tunes a single generation call. Model is a backend-specific model
// hint; zero values fall back to provider defaults.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Provider produces a completion for a system prompt plus conversation.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system string, turns []Turn, opts Options) (string, error)
}

// Streamer is implemented by providers that can deliver the reply in
// incremental chunks.
type Streamer interface {
	Stream(ctx context.Context, system string, turns []Turn, opts Options) (<-chan string, error)
}
