package memory

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	maxStoredMessages = 100
	maxMessageChars   = 4_000
)

// ChatStore keeps bounded per-session conversation history in process.
type ChatStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.ChatMessage
}

func NewChatStore() *ChatStore {
	return &ChatStore{sessions: make(map[string][]models.ChatMessage)}
}

func (s *ChatStore) Append(_ context.Context, sessionID string, role agenttypes.Role, content string) error {
	if sessionID == "" {
		return agenterrors.ErrMissingSession
	}
	if !agenttypes.IsSupportedRole(string(role)) {
		return agenterrors.ErrInvalidRole
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		log.Debug().Str("session_id", sessionID).Msg("ignoring empty chat message")
		return nil
	}
	if utf8.RuneCountInString(trimmed) > maxMessageChars {
		log.Debug().Str("session_id", sessionID).Str("role", string(role)).Int("limit", maxMessageChars).Msg("trimming chat message")
		trimmed = truncate(trimmed, maxMessageChars)
	}

	entry := models.ChatMessage{
		Role:      agenttypes.NormalizeRole(string(role)),
		Content:   trimmed,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	history := append(s.sessions[sessionID], entry)
	if overflow := len(history) - maxStoredMessages; overflow > 0 {
		history = history[overflow:]
		log.Info().Str("session_id", sessionID).Int("dropped", overflow).Msg("trimmed oldest chat messages")
	}
	s.sessions[sessionID] = history
	s.mu.Unlock()

	log.Info().Str("session_id", sessionID).Str("role", string(role)).Msg("stored chat message")
	return nil
}

func (s *ChatStore) History(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	if sessionID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.sessions[sessionID]...), nil
}

func (s *ChatStore) Reset(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	s.mu.Lock()
	_, existed := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if existed {
		log.Info().Str("session_id", sessionID).Msg("reset chat history")
	}
	return nil
}
