package generator

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	appTitle   = "AI Product Framework"
	appReferer = "https://github.com/esporykhin/ai-product-framework"
)

// OpenAILLM talks to any OpenAI-compatible chat completions endpoint:
// OpenAI itself, OpenRouter or DeepSeek.
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key missing; set llm.api_key or APF_LLM_API_KEY", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Provider == "openrouter" {
		// OpenRouter attributes traffic by these two headers.
		opts = append(opts,
			option.WithHeader("HTTP-Referer", appReferer),
			option.WithHeader("X-Title", appTitle),
		)
	}
	return &OpenAILLM{Model: cfg.Model, Opts: opts}, nil
}

// messages flattens a Prompt into the chat format. Empty system or user
// parts are left out so history-only prompts stay valid.
func (p Prompt) messages() []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		msgs = append(msgs, openai.SystemMessage(p.System))
	}
	for _, h := range p.History {
		if h.Role == RoleAssistant {
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Content))
			continue
		}
		msgs = append(msgs, openai.UserMessage(h.Content))
	}
	if p.User != "" {
		msgs = append(msgs, openai.UserMessage(p.User))
	}
	return msgs
}

// Complete sends prompt as one chat completion. Prompt.Model, when set,
// overrides the configured model for this call only.
func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	model := o.Model
	if prompt.Model != "" {
		model = prompt.Model
	}

	client := openai.NewClient(o.Opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: prompt.messages(),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s): empty choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
