package llm

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"libris/internal/adapter/gemini"
	"libris/internal/apperr"
	"libris/internal/vectorindex"
)

const (
	defaultInvokeSystem = "You are a concise and helpful assistant."
	defaultAnswerSystem = "You are a domain expert. Use only the provided context to answer."
	defaultAgentSystem  = "You are a thoughtful assistant. Decide when to use tools."

	defaultInvokeTemp = 0.2
	defaultAnswerTemp = 0.1
	defaultAgentTemp  = 0.0

	defaultTopK         = 4
	defaultChunkSize    = 1000
	defaultChunkOverlap = 150
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type invokeRequest struct {
	Message     string   `json:"message"`
	System      *string  `json:"system"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
}

func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		h.writeError(w, r, apperr.New(apperr.Validation, "message is required"))
		return
	}

	response, err := h.service.Invoke(r.Context(),
		req.Message,
		stringOr(req.System, defaultInvokeSystem),
		req.Model,
		floatOr(req.Temperature, defaultInvokeTemp))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"response": response})
}

type embedRequest struct {
	Paths          []string `json:"paths"`
	ChunkSize      *int     `json:"chunk_size"`
	ChunkOverlap   *int     `json:"chunk_overlap"`
	EmbeddingModel string   `json:"embedding_model"`
}

func (h *Handler) Embed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 {
		h.writeError(w, r, apperr.New(apperr.Validation, "paths (list of PDF files) is required"))
		return
	}

	summary, err := h.service.EmbedDocuments(r.Context(),
		req.Paths,
		intOr(req.ChunkSize, defaultChunkSize),
		intOr(req.ChunkOverlap, defaultChunkOverlap),
		req.EmbeddingModel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"indexed_chunks":  summary.Indexed,
		"total_chunks":    summary.Total,
		"embedding_model": summary.Model,
		"paths":           req.Paths,
	})
}

type searchRequest struct {
	Query string `json:"query"`
	K     *int   `json:"k"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		h.writeError(w, r, apperr.New(apperr.Validation, "query is required"))
		return
	}

	results, err := h.service.Search(r.Context(), req.Query, topKOr(req.K))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []vectorindex.Result{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"results": results})
}

type answerRequest struct {
	Question    string   `json:"question"`
	System      *string  `json:"system"`
	K           *int     `json:"k"`
	Temperature *float32 `json:"temperature"`
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Question == "" {
		h.writeError(w, r, apperr.New(apperr.Validation, "question is required"))
		return
	}

	answer, err := h.service.Answer(r.Context(),
		req.Question,
		stringOr(req.System, defaultAnswerSystem),
		topKOr(req.K),
		floatOr(req.Temperature, defaultAnswerTemp))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"answer":  answer.Answer,
		"context": answer.Context,
	})
}

type agentRequest struct {
	Message     string        `json:"message"`
	ChatHistory []gemini.Turn `json:"chat_history"`
	System      *string       `json:"system"`
	Temperature *float32      `json:"temperature"`
}

func (h *Handler) Agent(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		h.writeError(w, r, apperr.New(apperr.Validation, "message is required"))
		return
	}

	messages, events, err := h.service.Agent(r.Context(),
		req.Message,
		req.ChatHistory,
		stringOr(req.System, defaultAgentSystem),
		floatOr(req.Temperature, defaultAgentTemp))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []gemini.ToolEvent{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"messages":    messages,
		"tool_events": events,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return false
	}
	return true
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float32, fallback float32) float32 {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func topKOr(v *int) int {
	if v == nil || *v <= 0 {
		return defaultTopK
	}
	return *v
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response", "error", encErr)
	}
}
