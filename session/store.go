package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/w-h-a/vecstore/kv"
)

// Store persists whole sessions as JSON blobs under prefixed keys. Every
// message append is a read-modify-write of the full transcript: two
// concurrent appends to the same session race and the loser's message is
// lost. Fine for short-lived conversations; serialize writers otherwise.
type Store struct {
	options Options
	kv      kv.KV
}

func (s *Store) key(sessionId string) string {
	return s.options.Prefix + sessionId
}

// CreateSession builds and persists a fresh session.
func (s *Store) CreateSession(ctx context.Context, metadata map[string]string) *Session {
	session := NewSession(metadata)

	s.SaveSession(ctx, session)

	return session
}

// GetSession returns nil when the session does not exist or cannot be read.
func (s *Store) GetSession(ctx context.Context, sessionId string) *Session {
	data, err := s.kv.Get(ctx, s.key(sessionId))
	if err != nil {
		slog.WarnContext(ctx, "failed to get session", "session_id", sessionId, "error", err)
		return nil
	}

	if data == nil {
		return nil
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		slog.WarnContext(ctx, "failed to parse session", "session_id", sessionId, "error", err)
		return nil
	}

	return &session
}

// SaveSession overwrites the stored blob, applying the configured TTL.
func (s *Store) SaveSession(ctx context.Context, session *Session) bool {
	data, err := json.Marshal(session)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode session", "session_id", session.SessionId, "error", err)
		return false
	}

	key := s.key(session.SessionId)

	if s.options.TTL > 0 {
		err = s.kv.SetEx(ctx, key, s.options.TTL, data)
	} else {
		err = s.kv.Set(ctx, key, data)
	}

	if err != nil {
		slog.WarnContext(ctx, "failed to save session", "session_id", session.SessionId, "error", err)
		return false
	}

	return true
}

func (s *Store) DeleteSession(ctx context.Context, sessionId string) bool {
	existed, err := s.kv.Delete(ctx, s.key(sessionId))
	if err != nil {
		slog.WarnContext(ctx, "failed to delete session", "session_id", sessionId, "error", err)
		return false
	}

	return existed
}

func (s *Store) ListSessions(ctx context.Context) []string {
	keys, err := s.kv.Keys(ctx, s.options.Prefix+"*")
	if err != nil {
		slog.WarnContext(ctx, "failed to list sessions", "error", err)
		return nil
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, s.options.Prefix))
	}

	return ids
}

// AddMessage appends to the session and writes the whole transcript back.
func (s *Store) AddMessage(ctx context.Context, sessionId string, message Message) bool {
	session := s.GetSession(ctx, sessionId)
	if session == nil {
		return false
	}

	session.AddMessage(message)

	return s.SaveSession(ctx, session)
}

func (s *Store) AddUserMessage(ctx context.Context, sessionId string, content string) *Message {
	return s.addMessage(ctx, sessionId, RoleUser, content)
}

func (s *Store) AddAssistantMessage(ctx context.Context, sessionId string, content string) *Message {
	return s.addMessage(ctx, sessionId, RoleAssistant, content)
}

func (s *Store) AddSystemMessage(ctx context.Context, sessionId string, content string) *Message {
	return s.addMessage(ctx, sessionId, RoleSystem, content)
}

func (s *Store) addMessage(ctx context.Context, sessionId string, role string, content string) *Message {
	session := s.GetSession(ctx, sessionId)
	if session == nil {
		return nil
	}

	message := NewMessage(role, content)
	session.AddMessage(message)

	if !s.SaveSession(ctx, session) {
		return nil
	}

	return &message
}

// GetMessageHistory returns the transcript for a session, empty when the
// session does not exist.
func (s *Store) GetMessageHistory(ctx context.Context, sessionId string, limit int) []Turn {
	session := s.GetSession(ctx, sessionId)
	if session == nil {
		return nil
	}

	return session.GetMessageHistory(limit)
}

func NewStore(store kv.KV, opts ...Option) *Store {
	options := NewOptions(opts...)

	return &Store{
		options: options,
		kv:      store,
	}
}
