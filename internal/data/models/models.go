package models

import (
	"time"

	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
)

const previewLength = 160

type Note struct {
	Label   string    `json:"label"`
	Content string    `json:"content"`
	AddedAt time.Time `json:"added_at"`
}

// Preview returns a short prefix of the note content for list responses.
func (n Note) Preview() string {
	runes := []rune(n.Content)
	if len(runes) <= previewLength {
		return n.Content
	}
	return string(runes[:previewLength]) + "…"
}

type ChatMessage struct {
	Role      agenttypes.Role `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"ts"`
}

type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Status    string `json:"status,omitempty"`
}

type ProjectPlan struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"created_at"`
}

type CSVPreview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
