package application

import (
	"context"
	"strings"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/ports"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/prompt"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AgentService orchestrates note memory, chat sessions and the model.
type AgentService struct {
	notes        ports.NoteStore
	chats        ports.ChatStore
	llm          ports.LLMClient
	systemPrompt string
}

func NewAgentService(notes ports.NoteStore, chats ports.ChatStore, llm ports.LLMClient, systemPrompt string) *AgentService {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = prompt.DefaultSystemPrompt
	}
	return &AgentService{
		notes:        notes,
		chats:        chats,
		llm:          llm,
		systemPrompt: systemPrompt,
	}
}

// Ask answers a one-shot prompt enriched with stored notes and, when a
// session is given, that session's prior chat.
func (s *AgentService) Ask(ctx context.Context, sessionID, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", agenterrors.ErrEmptyPrompt
	}

	docs, err := s.notes.List(ctx)
	if err != nil {
		return "", err
	}

	var history []models.ChatMessage
	if sessionID != "" {
		history, err = s.chats.History(ctx, sessionID)
		if err != nil {
			return "", err
		}
	}

	finalPrompt := prompt.BuildWithMemory(userPrompt, history, docs, prompt.TotalPromptLimit)
	log.Debug().Int("final_prompt_len", len(finalPrompt)).Msg("composed prompt with memory")
	return s.llm.Generate(ctx, finalPrompt)
}

// Chat appends the user message to the session, runs a completion over
// the session transcript and records the assistant reply. A session id
// is minted when the caller does not supply one.
func (s *AgentService) Chat(ctx context.Context, sessionID, message string) (string, string, error) {
	if strings.TrimSpace(message) == "" {
		return "", "", agenterrors.ErrEmptyPrompt
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
		log.Info().Str("session_id", sessionID).Msg("started new chat session")
	}

	if err := s.chats.Append(ctx, sessionID, agenttypes.RoleUser, message); err != nil {
		return "", "", err
	}

	history, err := s.chats.History(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	window := prompt.RecentWindow(history, prompt.ChatMessageLimit, prompt.ChatCharBudget)

	reply, err := s.llm.ChatComplete(ctx, s.systemPrompt, window)
	if err != nil {
		return "", "", err
	}

	if err := s.chats.Append(ctx, sessionID, agenttypes.RoleAssistant, reply); err != nil {
		return "", "", err
	}
	return sessionID, reply, nil
}

// History returns the session's recent messages within retrieval budgets.
func (s *AgentService) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if sessionID == "" {
		return nil, agenterrors.ErrMissingSession
	}
	history, err := s.chats.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return prompt.RecentWindow(history, prompt.ChatMessageLimit, prompt.ChatCharBudget), nil
}

func (s *AgentService) ResetChat(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return agenterrors.ErrMissingSession
	}
	return s.chats.Reset(ctx, sessionID)
}

func (s *AgentService) AddNote(ctx context.Context, label, content string) (models.Note, error) {
	return s.notes.Add(ctx, label, content)
}

func (s *AgentService) Notes(ctx context.Context) ([]models.Note, error) {
	return s.notes.List(ctx)
}

func (s *AgentService) ResetNotes(ctx context.Context) (int, error) {
	return s.notes.Reset(ctx)
}
