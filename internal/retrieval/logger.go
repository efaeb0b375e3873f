package retrieval

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// QueryLogEntry is one line of the JSONL query audit log.
type QueryLogEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Kind          string    `json:"kind"` // "search" or "answer"
	Query         string    `json:"query"`
	NumResults    int       `json:"num_results"`
	LatencyMs     int64     `json:"latency_ms"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// QueryLogger appends entries to a writer, one JSON object per line.
type QueryLogger struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewQueryLogger(w io.Writer) *QueryLogger {
	return &QueryLogger{writer: w}
}

// NewFileQueryLogger opens (or creates) an append-only log file, creating
// parent directories as needed.
func NewFileQueryLogger(path string) (*QueryLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path comes from application config
	if err != nil {
		return nil, err
	}
	return &QueryLogger{writer: f}, nil
}

func (l *QueryLogger) Log(entry QueryLogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("failed to marshal query log entry", "error", err)
		return
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		slog.Warn("failed to write query log entry", "error", err)
	}
}
