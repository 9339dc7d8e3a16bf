package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/framework"
	"github.com/esporykhin/ai-product-framework/generator"
)

// Chats returns the saved advisor chats, newest first, and the active id.
func (s *Service) Chats() ([]framework.ChatSession, string) {
	st := s.State()
	return st.Chats, st.ActiveChatID
}

// Chat returns one saved chat.
func (s *Service) Chat(id string) (framework.ChatSession, error) {
	st := s.State()
	c, ok := st.Chat(id)
	if !ok {
		return framework.ChatSession{}, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	return *c, nil
}

// CreateChat opens an empty chat in front of the others and makes it active.
func (s *Service) CreateChat(ctx context.Context) (framework.ChatSession, error) {
	c := framework.NewChat(time.Now())
	err := s.update(ctx, func(st *framework.State) error {
		st.Chats = slices.Insert(st.Chats, 0, c)
		st.ActiveChatID = c.ID
		return nil
	})
	return c, err
}

func (s *Service) SelectChat(ctx context.Context, id string) error {
	return s.update(ctx, func(st *framework.State) error {
		if _, ok := st.Chat(id); !ok {
			return fmt.Errorf("%w: %s", ErrChatNotFound, id)
		}
		st.ActiveChatID = id
		return nil
	})
}

// DeleteChat removes a chat. When it was active the first remaining chat
// takes over.
func (s *Service) DeleteChat(ctx context.Context, id string) error {
	return s.update(ctx, func(st *framework.State) error {
		i := slices.IndexFunc(st.Chats, func(c framework.ChatSession) bool { return c.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrChatNotFound, id)
		}
		st.Chats = slices.Delete(st.Chats, i, i+1)
		if st.ActiveChatID == id {
			st.ActiveChatID = ""
		}
		return nil
	})
}

// AskChat saves question in the chat, asks the advisor without holding the
// lock and saves the reply. A failed call is saved as an error reply so the
// chat keeps the question.
func (s *Service) AskChat(ctx context.Context, id string, view generator.View, question string, attachments []generator.Attachment) (framework.ChatMessage, error) {
	if s.agent == nil {
		return framework.ChatMessage{}, ErrNoAgent
	}
	question = strings.TrimSpace(question)
	if question == "" && len(attachments) == 0 {
		return framework.ChatMessage{}, generator.ErrEmptyQuestion
	}

	var (
		snapshot framework.State
		history  []framework.ChatMessage
	)
	err := s.update(ctx, func(st *framework.State) error {
		c, ok := st.Chat(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrChatNotFound, id)
		}
		history = slices.Clone(c.Messages)
		if len(c.Messages) == 0 {
			c.Title = generator.ChatTitle(question)
		}
		c.Append(framework.RoleUser, question, time.Now())
		snapshot = st.Clone()
		return nil
	})
	if err != nil {
		return framework.ChatMessage{}, err
	}

	start := time.Now()
	text, askErr := s.agent.Chat(ctx, snapshot, view, history, question, attachments)
	s.observe("chat", start, askErr)
	if askErr != nil {
		text = "Ошибка: " + askErr.Error()
	}

	// The reply is saved even when ctx expired during the call.
	var reply framework.ChatMessage
	err = s.update(context.WithoutCancel(ctx), func(st *framework.State) error {
		c, ok := st.Chat(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrChatNotFound, id)
		}
		reply = c.Append(framework.RoleAssistant, text, time.Now())
		return nil
	})
	if askErr != nil {
		if err != nil {
			s.log.Warn("chat error reply not saved", zap.String("chat", id), zap.Error(err))
		}
		return framework.ChatMessage{}, askErr
	}
	return reply, err
}
