// Package stats reports catalog and index counters for quick health
// inspection.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"libris/internal/apperr"
)

// BookCounter counts stored books.
type BookCounter interface {
	Count(ctx context.Context) (int, error)
}

// IndexInfo exposes the vector index counters. Both calls are local and
// cannot fail.
type IndexInfo interface {
	Size() int
	Model() string
}

type Handler struct {
	books BookCounter
	index IndexInfo
}

func NewHandler(books BookCounter, index IndexInfo) *Handler {
	return &Handler{books: books, index: index}
}

type Response struct {
	Books          int    `json:"books"`
	IndexedChunks  int    `json:"indexed_chunks"`
	EmbeddingModel string `json:"embedding_model"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.books.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count books", "error", err)
		h.writeError(w, apperr.Wrap(apperr.Execution, "failed to count books", err))
		return
	}

	resp := Response{
		Books:          count,
		IndexedChunks:  h.index.Size(),
		EmbeddingModel: h.index.Model(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.StatusOf(err))
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		slog.Error("failed to encode error response", "error", encErr)
	}
}
