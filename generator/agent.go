package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/esporykhin/ai-product-framework/framework"
	"github.com/esporykhin/ai-product-framework/markdown"
)

// ErrNoProblemStatement is returned by actions that need the hypothesis
// problem text filled in first.
var ErrNoProblemStatement = errors.New("hypothesis has no problem statement")

// Agent runs the AI actions of the workbench on top of an LLMClient.
type Agent struct {
	llm           LLMClient
	researchModel string
	now           func() time.Time
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithResearchModel sets the model used for research when the caller does
// not pick one.
func WithResearchModel(model string) AgentOption {
	return func(a *Agent) { a.researchModel = model }
}

// WithClock replaces time.Now for research timestamps.
func WithClock(now func() time.Time) AgentOption {
	return func(a *Agent) { a.now = now }
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{llm: llm, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Agent) complete(ctx context.Context, prompt Prompt) (string, error) {
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return PostProcess(raw)
}

// StrategicFocus drafts the strategic focus of a hypothesis.
func (a *Agent) StrategicFocus(ctx context.Context, p framework.ProblemEntry, projectContext string) (string, error) {
	if strings.TrimSpace(p.UserProblem) == "" {
		return "", ErrNoProblemStatement
	}
	text, err := a.complete(ctx, BuildFocusPrompt(p, projectContext))
	if err != nil {
		return "", fmt.Errorf("strategic focus: %w", err)
	}
	return text, nil
}

// GTMPlan drafts a go-to-market plan for a hypothesis.
func (a *Agent) GTMPlan(ctx context.Context, p framework.ProblemEntry, projectContext string) (string, error) {
	if strings.TrimSpace(p.UserProblem) == "" {
		return "", ErrNoProblemStatement
	}
	text, err := a.complete(ctx, BuildGTMPrompt(p, projectContext))
	if err != nil {
		return "", fmt.Errorf("gtm plan: %w", err)
	}
	return text, nil
}

// Research runs one research query. Links cited in the answer become the
// item's sources.
func (a *Agent) Research(ctx context.Context, query, model, projectContext string) (framework.ResearchItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return framework.ResearchItem{}, errors.New("research query is empty")
	}
	if model == "" {
		model = a.researchModel
	}
	text, err := a.complete(ctx, BuildResearchPrompt(query, model, projectContext))
	if err != nil {
		return framework.ResearchItem{}, fmt.Errorf("research %q: %w", query, err)
	}
	if model == "" {
		model = "default"
	}
	return framework.ResearchItem{
		ID:        framework.NewID(),
		Query:     query,
		Result:    text,
		Sources:   markdown.ExtractSources(text),
		Model:     model,
		Timestamp: a.now().UnixMilli(),
	}, nil
}

// GlobalStrategy drafts the executive summary across all hypotheses.
func (a *Agent) GlobalStrategy(ctx context.Context, s framework.State) (string, error) {
	text, err := a.complete(ctx, BuildStrategyPrompt(s))
	if err != nil {
		return "", fmt.Errorf("global strategy: %w", err)
	}
	return text, nil
}

// ValidationQuestions asks for hard business questions. Answers start empty.
func (a *Agent) ValidationQuestions(ctx context.Context, s framework.State) ([]framework.ValidationItem, error) {
	text, err := a.complete(ctx, BuildValidationPrompt(s))
	if err != nil {
		return nil, fmt.Errorf("validation questions: %w", err)
	}
	questions := SplitQuestions(text)
	if len(questions) == 0 {
		return nil, fmt.Errorf("validation questions: %w", ErrEmptyOutput)
	}
	items := make([]framework.ValidationItem, 0, len(questions))
	for _, q := range questions {
		items = append(items, framework.ValidationItem{ID: framework.NewID(), Question: q})
	}
	return items, nil
}
