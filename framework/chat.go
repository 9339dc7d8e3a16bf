package framework

import "time"

// Chat roles as the OpenAI-compatible APIs spell them.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultChatTitle names a chat until its first question renames it.
const DefaultChatTitle = "Новый чат"

// ChatMessage is one turn of an advisor chat.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// ChatSession is an advisor conversation saved with the workbench.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	UpdatedAt int64         `json:"updatedAt"` // unix millis
}

// NewChat returns an empty chat stamped with now.
func NewChat(now time.Time) ChatSession {
	return ChatSession{
		ID:        NewID(),
		Title:     DefaultChatTitle,
		Messages:  []ChatMessage{},
		UpdatedAt: now.UnixMilli(),
	}
}

// Chat returns the chat with the given id.
func (s *State) Chat(id string) (*ChatSession, bool) {
	for i := range s.Chats {
		if s.Chats[i].ID == id {
			return &s.Chats[i], true
		}
	}
	return nil, false
}

// Append records a message and bumps UpdatedAt.
func (c *ChatSession) Append(role, content string, now time.Time) ChatMessage {
	m := ChatMessage{Role: role, Content: content, Timestamp: now.UnixMilli()}
	c.Messages = append(c.Messages, m)
	c.UpdatedAt = m.Timestamp
	return m
}

func cloneChats(chats []ChatSession) []ChatSession {
	if chats == nil {
		return nil
	}
	out := make([]ChatSession, len(chats))
	for i, c := range chats {
		c.Messages = cloneSlice(c.Messages)
		out[i] = c
	}
	return out
}
