package session

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	MessageId string    `json:"message_id"`
}

func NewMessage(role string, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		MessageId: uuid.New().String(),
	}
}

// Turn is a message reduced to what an LLM context window needs.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is an append-only conversation transcript. It is persisted as a
// single blob, so mutations only take effect once the session is saved.
type Session struct {
	SessionId string            `json:"session_id"`
	Messages  []Message         `json:"messages"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewSession(metadata map[string]string) *Session {
	if metadata == nil {
		metadata = map[string]string{}
	}

	now := time.Now().UTC()

	return &Session{
		SessionId: uuid.New().String(),
		Messages:  []Message{},
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) AddMessage(message Message) {
	s.Messages = append(s.Messages, message)
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) AddUserMessage(content string) Message {
	message := NewMessage(RoleUser, content)
	s.AddMessage(message)
	return message
}

func (s *Session) AddAssistantMessage(content string) Message {
	message := NewMessage(RoleAssistant, content)
	s.AddMessage(message)
	return message
}

func (s *Session) AddSystemMessage(content string) Message {
	message := NewMessage(RoleSystem, content)
	s.AddMessage(message)
	return message
}

// GetMessages returns messages in insertion order, optionally filtered by
// role, keeping the most recent limit messages. limit <= 0 keeps all.
func (s *Session) GetMessages(limit int, roles ...string) []Message {
	messages := s.Messages

	if len(roles) > 0 {
		filtered := make([]Message, 0, len(messages))
		for _, message := range messages {
			if slices.Contains(roles, message.Role) {
				filtered = append(filtered, message)
			}
		}
		messages = filtered
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	return messages
}

// GetMessageHistory returns the transcript in a shape suitable for an LLM
// context. limit <= 0 keeps all messages.
func (s *Session) GetMessageHistory(limit int) []Turn {
	messages := s.GetMessages(limit)

	turns := make([]Turn, len(messages))
	for n, message := range messages {
		turns[n] = Turn{Role: message.Role, Content: message.Content}
	}

	return turns
}

func (s *Session) ClearMessages() {
	s.Messages = []Message{}
	s.UpdatedAt = time.Now().UTC()
}
