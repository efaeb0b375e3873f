package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/logger"
	"libris/internal/middleware"
)

func TestContextHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := middleware.WithCorrelationID(context.Background(), "corr-1")
	l.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "corr-1", rec["correlation_id"])
}

func TestContextHandler_NoCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	l.Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	_, ok := rec["correlation_id"]
	assert.False(t, ok)
}
