package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/application"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/ingest"
	agenttypes "github.com/Meesho/BharatMLStack/pmo-agent/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	maxUploadBytes = 1 << 20
	maxNoteLength  = 10_000
	maxBodyBytes   = 1 << 20
)

type Handler struct {
	agent *application.AgentService
	plans *application.PlanService
}

func NewHandler(agent *application.AgentService, plans *application.PlanService) *Handler {
	return &Handler{agent: agent, plans: plans}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/health/self", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "true"})
	})
	mux.HandleFunc("/llm", h.handleLLM)
	mux.HandleFunc("/upload", h.handleUpload)
	mux.HandleFunc("/memory", h.handleListMemory)
	mux.HandleFunc("/memory/reset", h.handleResetMemory)
	mux.HandleFunc("/memory/add_text", h.handleAddMemoryText)
	mux.HandleFunc("/chat", h.handleChatPage)
	mux.HandleFunc("/chat/messages", h.handleChatMessage)
	mux.HandleFunc("/chat/history", h.handleChatHistory)
	mux.HandleFunc("/chat/reset", h.handleChatReset)
	mux.HandleFunc("/plans", h.handlePlans)
	mux.HandleFunc("/plans/", h.handlePlanByName)
	mux.HandleFunc("/upload-ui", h.handleUploadPage)
	mux.Handle("/static/", staticFileHandler())
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, "route not found")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLLM(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LLMRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	text, err := h.agent.Ask(r.Context(), req.SessionID, req.Prompt)
	if err != nil {
		h.writeLLMErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LLMResponse{Response: text})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "A file upload is required.")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeErr(w, http.StatusBadRequest, "Filename is required.")
		return
	}
	kind, supported := agenttypes.FileKindForName(header.Filename)
	if !supported {
		writeErr(w, http.StatusBadRequest, "Unsupported file type. Allowed: txt, md, csv, docx.")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}
	if len(data) > maxUploadBytes {
		writeErr(w, http.StatusBadRequest, "File too large. Limit is 1 MB.")
		return
	}
	if len(data) == 0 {
		writeErr(w, http.StatusBadRequest, "Uploaded file is empty.")
		return
	}

	log.Info().Str("filename", header.Filename).Str("kind", string(kind)).Int("bytes", len(data)).Msg("processing uploaded file")

	extraction, err := ingest.Extract(kind, data)
	if err != nil {
		switch {
		case errors.Is(err, agenterrors.ErrInvalidEncoding):
			writeErr(w, http.StatusBadRequest, "Unable to decode file as UTF-8.")
		case errors.Is(err, agenterrors.ErrMalformedCSV):
			writeErr(w, http.StatusBadRequest, "Failed to parse CSV file.")
		case errors.Is(err, agenterrors.ErrMalformedDocx):
			writeErr(w, http.StatusBadRequest, "Failed to read DOCX file.")
		default:
			writeErr(w, http.StatusInternalServerError, "failed to process uploaded file")
		}
		return
	}

	label := "doc:" + path.Base(header.Filename)
	note, err := h.agent.AddNote(r.Context(), label, extraction.Text)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		StoredLabel: note.Label,
		CharsStored: utf8.RuneCountInString(extraction.Text),
		CSVPreview:  extraction.CSVPreview,
	})
}

func (h *Handler) handleListMemory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	notes, err := h.agent.Notes(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to list memory items")
		return
	}

	response := ListMemoryResponse{Items: make([]MemoryItemView, 0, len(notes))}
	for _, note := range notes {
		response.Items = append(response.Items, MemoryItemView{
			Label:   note.Label,
			Preview: note.Preview(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleResetMemory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := h.agent.ResetNotes(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to reset memory")
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *Handler) handleAddMemoryText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req MemoryAddRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if utf8.RuneCountInString(req.Content) > maxNoteLength {
		writeErr(w, http.StatusBadRequest, "Content exceeds maximum length of 10k characters.")
		return
	}

	if _, err := h.agent.AddNote(r.Context(), req.Label, req.Content); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *Handler) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ChatMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sessionID, reply, err := h.agent.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeLLMErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatMessageResponse{SessionID: sessionID, Reply: reply})
}

func (h *Handler) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	messages, err := h.agent.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, agenterrors.ErrMissingSession) {
			writeErr(w, http.StatusBadRequest, "session_id query param is required")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}

	response := ChatHistoryResponse{Messages: make([]ChatMessageView, 0, len(messages))}
	for _, msg := range messages {
		response.Messages = append(response.Messages, ChatMessageView{
			Role:    string(msg.Role),
			Content: msg.Content,
			TS:      msg.Timestamp.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleChatReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SessionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.agent.ResetChat(r.Context(), strings.TrimSpace(req.SessionID)); err != nil {
		if errors.Is(err, agenterrors.ErrMissingSession) {
			writeErr(w, http.StatusBadRequest, "session_id is required")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to reset chat session")
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *Handler) handlePlans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listPlans(w, r)
	case http.MethodPost:
		h.ingestPlan(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to list plans")
		return
	}

	response := ListPlansResponse{Plans: make([]PlanView, 0, len(plans))}
	for _, plan := range plans {
		response.Plans = append(response.Plans, PlanView{
			Name:        plan.Name,
			Description: plan.Description,
			TaskCount:   len(plan.Tasks),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) ingestPlan(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "A CSV file upload is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}
	if len(data) > maxUploadBytes {
		writeErr(w, http.StatusBadRequest, "File too large. Limit is 1 MB.")
		return
	}

	plan, err := h.plans.Ingest(r.Context(), r.FormValue("name"), r.FormValue("description"), data)
	if err != nil {
		switch {
		case errors.Is(err, agenterrors.ErrPlanExists):
			writeErr(w, http.StatusConflict, "A plan with this name already exists.")
		case errors.Is(err, agenterrors.ErrMissingPlanName):
			writeErr(w, http.StatusBadRequest, "Plan name is required.")
		case errors.Is(err, agenterrors.ErrDuplicateTaskID),
			errors.Is(err, agenterrors.ErrMissingTaskFields),
			errors.Is(err, agenterrors.ErrInvalidTaskDate),
			errors.Is(err, agenterrors.ErrMalformedCSV),
			errors.Is(err, agenterrors.ErrInvalidEncoding):
			writeErr(w, http.StatusBadRequest, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "failed to ingest plan")
		}
		return
	}

	writeJSON(w, http.StatusCreated, IngestPlanResponse{Name: plan.Name, TaskCount: len(plan.Tasks)})
}

func (h *Handler) handlePlanByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/plans/"), "/")
	if rest == "" {
		writeErr(w, http.StatusNotFound, "route not found")
		return
	}

	name := rest
	export := false
	if strings.HasSuffix(rest, "/export") {
		name = strings.TrimSuffix(rest, "/export")
		export = true
	}
	if name == "" || strings.Contains(name, "/") {
		writeErr(w, http.StatusNotFound, "route not found")
		return
	}

	if export {
		h.exportPlan(w, r, name)
		return
	}

	plan, err := h.plans.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, agenterrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "plan not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to fetch plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) exportPlan(w http.ResponseWriter, r *http.Request, name string) {
	raw, err := h.plans.ExportCSV(r.Context(), name)
	if err != nil {
		if errors.Is(err, agenterrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "plan not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "failed to export plan")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// writeLLMErr maps model-path failures to HTTP status codes: config
// problems are the caller's to fix (400), upstream failures are 502.
func (h *Handler) writeLLMErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, agenterrors.ErrEmptyPrompt):
		writeErr(w, http.StatusBadRequest, "Prompt must be a non-empty string.")
	case errors.Is(err, agenterrors.ErrMissingAPIKey):
		writeErr(w, http.StatusBadRequest, "GEMINI_API_KEY is not set. Please configure the environment variable before using the LLM.")
	case errors.Is(err, agenterrors.ErrEmptyCompletion), errors.Is(err, agenterrors.ErrUpstreamLLM):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("llm call failed")
		writeErr(w, http.StatusBadGateway, "LLM request failed.")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected agent failure")
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request payload.")
		return false
	}
	return true
}

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal serialization error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

type requestIDContextKey string

const requestIDKey requestIDContextKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	val := ctx.Value(requestIDKey)
	id, _ := val.(string)
	return id
}
