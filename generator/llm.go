package generator

import "context"

// LLMClient is the one call the agent needs from a chat model.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings carries what a concrete client needs to reach its provider.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
