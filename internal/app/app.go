// Package app composes the service: feature wiring, routes and the HTTP
// server lifecycle.
package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"libris/features/book"
	"libris/features/llm"
	"libris/features/stats"
	"libris/internal/adapter/gemini"
	"libris/internal/config"
	"libris/internal/document"
	"libris/internal/middleware"
	"libris/internal/retrieval"
	"libris/internal/tools"
	"libris/internal/vectorindex"

	"google.golang.org/api/option"
)

type App struct {
	Handler http.Handler
	Index   *vectorindex.Index

	port int
}

// New wires every feature against the shared database connection and the
// provider client. Extra client options are for tests (fake endpoints).
func New(cfg *config.Config, db *sql.DB, clientOpts ...option.ClientOption) (*App, error) {
	// Adapter: Gemini
	provider := gemini.NewClient(cfg.GeminiAPIKey, cfg.ChatModel, clientOpts...)

	// Shared vector index, created lazily on first ingest.
	index := vectorindex.New(provider, cfg.EmbedModel)

	// Feature: Book
	bookRepo := book.NewSQLiteRepo(db)
	bookService := book.NewService(bookRepo)
	bookHandler := book.NewHandler(bookService)

	// Feature: Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(index, provider, queryLogger)

	// Feature: LLM
	agentTools := []gemini.Tool{tools.TextStats{}}
	llmService := llm.NewService(document.NewLoader(), index, retrievalService, provider, agentTools)
	llmHandler := llm.NewHandler(llmService)

	// Feature: Stats
	statsHandler := stats.NewHandler(bookRepo, index)

	// Routes
	mux := http.NewServeMux()

	mux.Handle("GET /books", middleware.CorrelationID(middleware.CORS(bookHandler.List)))
	mux.Handle("GET /books/{id}", middleware.CorrelationID(middleware.CORS(bookHandler.Get)))
	mux.Handle("POST /books", middleware.CorrelationID(middleware.CORS(bookHandler.Create)))
	mux.Handle("PUT /books/{id}", middleware.CorrelationID(middleware.CORS(bookHandler.Update)))
	mux.Handle("DELETE /books/{id}", middleware.CorrelationID(middleware.CORS(bookHandler.Delete)))

	mux.Handle("POST /llm/simple-invoke", middleware.CorrelationID(middleware.CORS(llmHandler.Invoke)))
	mux.Handle("POST /llm/embed-pdfs", middleware.CorrelationID(middleware.CORS(llmHandler.Embed)))
	mux.Handle("POST /llm/vector-search", middleware.CorrelationID(middleware.CORS(llmHandler.Search)))
	mux.Handle("POST /llm/retrieval-answer", middleware.CorrelationID(middleware.CORS(llmHandler.Answer)))
	mux.Handle("POST /llm/react-agent", middleware.CorrelationID(middleware.CORS(llmHandler.Agent)))

	mux.Handle("GET /stats", middleware.CorrelationID(middleware.CORS(statsHandler.GetStats)))

	mux.HandleFunc("GET /{$}", home)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{Handler: mux, Index: index, port: cfg.ServerPort}, nil
}

func home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"message": "Welcome to the Book + LLM API!",
		"endpoints": map[string]string{
			"GET /books":                 "Get all books",
			"GET /books/{id}":            "Get a single book",
			"POST /books":                "Add a new book",
			"PUT /books/{id}":            "Update a book",
			"DELETE /books/{id}":         "Delete a book",
			"POST /llm/simple-invoke":    "Call an LLM with system & human messages",
			"POST /llm/embed-pdfs":       "Embed PDF files into the vector store",
			"POST /llm/vector-search":    "Search the vector store",
			"POST /llm/retrieval-answer": "Retrieval augmented answer over the vector store",
			"POST /llm/react-agent":      "Run a tool-calling agent with a sample tool",
			"GET /stats":                 "Catalog and index counters",
		},
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
