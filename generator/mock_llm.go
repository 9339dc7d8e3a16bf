package generator

import (
	"context"
	"strings"
)

// MockLLM is an offline stand-in for local runs; it never calls a model.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	// Echo the task so the result is recognisable in exports.
	var sb strings.Builder
	sb.WriteString("## Черновой ответ (mock)\n\n")
	if prompt.Model != "" {
		sb.WriteString("Модель: " + prompt.Model + "\n\n")
	}
	sb.WriteString("Почему это важно для бизнеса?\n")
	sb.WriteString("Кто будет платить за решение?\n")
	sb.WriteString("См. [документацию](https://example.com/mock)\n\n")
	sb.WriteString("```\n")
	sb.WriteString(firstLine(prompt.User))
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
