package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esporykhin/ai-product-framework/framework"
)

type scriptedLLM struct {
	reply   string
	err     error
	prompts []Prompt
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.prompts = append(s.prompts, p)
	return s.reply, s.err
}

func newTestAgent(t *testing.T, llm LLMClient, opts ...AgentOption) *Agent {
	t.Helper()
	opts = append([]AgentOption{WithClock(func() time.Time { return time.UnixMilli(42) })}, opts...)
	a, err := NewAgent(llm, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAgentRequiresClient(t *testing.T) {
	_, err := NewAgent(nil)
	assert.Error(t, err)
}

func TestStrategicFocus(t *testing.T) {
	llm := &scriptedLLM{reply: "  Мы сфокусируемся на триаже.\n"}
	a := newTestAgent(t, llm)

	p := framework.NewProblem(0)
	p.UserProblem = "Долгие ответы"
	p.CurrentSolution = "Ручной разбор"
	text, err := a.StrategicFocus(context.Background(), p, "")
	require.NoError(t, err)
	assert.Equal(t, "Мы сфокусируемся на триаже.", text)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0].User, "Проблема: Долгие ответы")
	assert.Contains(t, llm.prompts[0].User, "Нет дополнительного контекста.")
	assert.Empty(t, llm.prompts[0].System)
}

func TestActionsNeedProblemStatement(t *testing.T) {
	llm := &scriptedLLM{reply: "x"}
	a := newTestAgent(t, llm)

	_, err := a.StrategicFocus(context.Background(), framework.NewProblem(0), "")
	assert.ErrorIs(t, err, ErrNoProblemStatement)
	_, err = a.GTMPlan(context.Background(), framework.NewProblem(0), "")
	assert.ErrorIs(t, err, ErrNoProblemStatement)
	assert.Empty(t, llm.prompts)
}

func TestGTMPromptNamesApproach(t *testing.T) {
	llm := &scriptedLLM{reply: "plan"}
	a := newTestAgent(t, llm)

	approach := "nlu"
	p := framework.NewProblem(0)
	p.UserProblem = "x"
	p.SelectedApproach = &approach
	_, err := a.GTMPlan(context.Background(), p, "ctx")
	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0].User, "Технический подход: nlu (Чат-боты / NLU, LLMs, NLP)")
	assert.Contains(t, llm.prompts[0].User, "ctx")

	p.SelectedApproach = nil
	_, err = a.GTMPlan(context.Background(), p, "")
	require.NoError(t, err)
	assert.Contains(t, llm.prompts[1].User, "Технический подход: Не выбран")
}

func TestEmptyOutputIsError(t *testing.T) {
	a := newTestAgent(t, &scriptedLLM{reply: " \n "})
	_, err := a.GlobalStrategy(context.Background(), framework.DefaultState())
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestLLMErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	a := newTestAgent(t, &scriptedLLM{err: boom})
	_, err := a.GlobalStrategy(context.Background(), framework.DefaultState())
	assert.ErrorIs(t, err, boom)
}

func TestResearch(t *testing.T) {
	llm := &scriptedLLM{reply: "## Рынок\nСм. [A](https://a.example) и [B](https://b.example), снова [A2](https://a.example)."}
	a := newTestAgent(t, llm, WithResearchModel("perplexity/sonar"))

	item, err := a.Research(context.Background(), "  Размер рынка ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Размер рынка", item.Query)
	assert.Equal(t, "perplexity/sonar", item.Model)
	assert.Equal(t, int64(42), item.Timestamp)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, []framework.Source{
		{Title: "A2", URL: "https://a.example"},
		{Title: "B", URL: "https://b.example"},
	}, item.Sources)
	assert.Equal(t, "perplexity/sonar", llm.prompts[0].Model)

	item, err = a.Research(context.Background(), "q", "gpt-4o", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", item.Model)

	_, err = a.Research(context.Background(), " ", "", "")
	assert.Error(t, err)
}

func TestGlobalStrategyPrompt(t *testing.T) {
	llm := &scriptedLLM{reply: "strategy"}
	a := newTestAgent(t, llm)

	s := framework.DefaultState()
	s.Problems[0].GTMPlan = "plan"
	s.ValidationQuestions = []framework.ValidationItem{{ID: "1", Question: "Who pays?"}}
	_, err := a.GlobalStrategy(context.Background(), s)
	require.NoError(t, err)

	user := llm.prompts[0].User
	assert.Contains(t, user, `"title": "Гипотеза 1"`)
	assert.Contains(t, user, `"score": 8`)
	assert.Contains(t, user, `"gtm": "Есть план"`)
	assert.Contains(t, user, "Q: Who pays?\nA: Ответа нет")
}

func TestValidationQuestions(t *testing.T) {
	reply := strings.Join([]string{
		"1. Кто заплатит за это?",
		"",
		"ok",
		"- Что будет, если модель ошибётся?",
		"Как вы обойдёте конкурентов",
	}, "\n")
	a := newTestAgent(t, &scriptedLLM{reply: reply})

	items, err := a.ValidationQuestions(context.Background(), framework.DefaultState())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Кто заплатит за это?", items[0].Question)
	assert.Equal(t, "Что будет, если модель ошибётся?", items[1].Question)
	assert.Equal(t, "Как вы обойдёте конкурентов", items[2].Question)
	for _, it := range items {
		assert.NotEmpty(t, it.ID)
		assert.Empty(t, it.Answer)
	}
}

func TestValidationQuestionsAllNoise(t *testing.T) {
	a := newTestAgent(t, &scriptedLLM{reply: "ok\nда"})
	_, err := a.ValidationQuestions(context.Background(), framework.DefaultState())
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestChat(t *testing.T) {
	llm := &scriptedLLM{reply: "Начните с пилота."}
	a := newTestAgent(t, llm)

	s := framework.DefaultState()
	s.ProjectContext = "Клиники"
	reply, err := a.Chat(context.Background(), s, ViewStrategy, nil, "С какой гипотезы начать?", []Attachment{{Source: "GTM", Text: "канал: вебинары"}})
	require.NoError(t, err)
	assert.Equal(t, "Начните с пилота.", reply)

	p := llm.prompts[0]
	assert.Contains(t, p.System, "User is currently viewing: Strategy Dashboard")
	assert.Contains(t, p.System, "Клиники")
	assert.Contains(t, p.System, `"id": "default-problem"`)
	assert.Contains(t, p.User, "--- Context #1 from GTM ---")
	assert.Empty(t, p.History)

	history := []framework.ChatMessage{
		{Role: RoleUser, Content: "С какой гипотезы начать?"},
		{Role: RoleAssistant, Content: reply},
	}
	_, err = a.Chat(context.Background(), s, ViewProblem, history, "  А риски?", nil)
	require.NoError(t, err)
	require.Len(t, llm.prompts[1].History, 2)
	assert.Equal(t, RoleUser, llm.prompts[1].History[0].Role)
	assert.Equal(t, RoleAssistant, llm.prompts[1].History[1].Role)
	assert.Equal(t, "А риски?", llm.prompts[1].User)
	assert.Contains(t, llm.prompts[1].System, "Problem Editor")
}

func TestChatFailure(t *testing.T) {
	a := newTestAgent(t, &scriptedLLM{err: errors.New("rate limited")})
	_, err := a.Chat(context.Background(), framework.DefaultState(), ViewProblem, nil, "Привет", nil)
	assert.ErrorContains(t, err, "rate limited")
}

func TestChatRejectsEmpty(t *testing.T) {
	llm := &scriptedLLM{reply: "x"}
	a := newTestAgent(t, llm)
	_, err := a.Chat(context.Background(), framework.DefaultState(), ViewProblem, nil, "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Empty(t, llm.prompts)
}

func TestChatTitle(t *testing.T) {
	assert.Equal(t, "Привет", ChatTitle("Привет"))
	assert.Equal(t, "С какой гипотезы начать, если ...", ChatTitle("С какой гипотезы начать, если бюджет ограничен?"))
}

func TestMockLLM(t *testing.T) {
	a := newTestAgent(t, MockLLM{})
	item, err := a.Research(context.Background(), "q", "m", "")
	require.NoError(t, err)
	assert.Len(t, item.Sources, 1)

	items, err := a.ValidationQuestions(context.Background(), framework.DefaultState())
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
