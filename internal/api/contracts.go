package api

import "github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"

type ErrorResponse struct {
	Error string `json:"error"`
}

type LLMRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
}

type LLMResponse struct {
	Response string `json:"response"`
}

type UploadResponse struct {
	StoredLabel string             `json:"stored_label"`
	CharsStored int                `json:"chars_stored"`
	CSVPreview  *models.CSVPreview `json:"csv_preview,omitempty"`
}

type MemoryAddRequest struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

type MemoryItemView struct {
	Label   string `json:"label"`
	Preview string `json:"preview"`
}

type ListMemoryResponse struct {
	Items []MemoryItemView `json:"items"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ChatMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type ChatMessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessageView `json:"messages"`
}

type ChatMessageView struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	TS      string `json:"ts"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type PlanView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TaskCount   int    `json:"task_count"`
}

type ListPlansResponse struct {
	Plans []PlanView `json:"plans"`
}

type IngestPlanResponse struct {
	Name      string `json:"name"`
	TaskCount int    `json:"task_count"`
}
