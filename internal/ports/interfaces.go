package ports

import (
	"context"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
)

// NoteStore holds the agent's document/note memory, newest first.
type NoteStore interface {
	Add(ctx context.Context, label, content string) (models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Reset(ctx context.Context) (int, error)
}

// ChatStore keeps per-session conversation history.
type ChatStore interface {
	Append(ctx context.Context, sessionID string, role agenttypes.Role, content string) error
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Reset(ctx context.Context, sessionID string) error
}

type PlanStore interface {
	Save(ctx context.Context, plan models.ProjectPlan) error
	List(ctx context.Context) ([]models.ProjectPlan, error)
	Get(ctx context.Context, name string) (models.ProjectPlan, error)
}

// LLMClient fronts the hosted model used for agent responses.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ChatComplete(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error)
}
