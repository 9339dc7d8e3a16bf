package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/esporykhin/ai-product-framework/framework"
)

// ErrEmptyQuestion is returned for a chat question with no text and no
// attachments.
var ErrEmptyQuestion = errors.New("empty question")

// Chat answers question against a snapshot of the workbench. history holds
// the earlier messages of the same chat and does not include question.
func (a *Agent) Chat(ctx context.Context, state framework.State, view View, history []framework.ChatMessage, question string, attachments []Attachment) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" && len(attachments) == 0 {
		return "", ErrEmptyQuestion
	}
	text, err := a.complete(ctx, BuildChatPrompt(state, view, history, question, attachments))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return text, nil
}
