// Package logger wires slog to the request correlation id.
package logger

import (
	"context"
	"log/slog"
	"os"

	"libris/internal/middleware"
)

// ContextHandler decorates every record with the correlation id carried by
// the request context, so handlers can log with slog.InfoContext and stay
// traceable.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := middleware.GetCorrelationID(ctx); id != "" && id != "unknown" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

// New builds the service-wide JSON logger.
func New() *slog.Logger {
	return slog.New(NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
}
