// Package llm exposes the provider-backed endpoints: chat invocation,
// document embedding, similarity search, retrieval-augmented answers and
// the tool-calling agent.
package llm

import (
	"context"

	"libris/internal/adapter/gemini"
	"libris/internal/document"
	"libris/internal/retrieval"
	"libris/internal/vectorindex"
)

// DocumentLoader turns file paths into text chunks.
type DocumentLoader interface {
	Load(paths []string, chunkSize, chunkOverlap int) ([]document.Chunk, error)
}

// Ingestor is the write side of the vector index.
type Ingestor interface {
	Ingest(ctx context.Context, chunks []document.Chunk, model string) (*vectorindex.IngestSummary, error)
}

// Retrieval is the read side: plain search and context-augmented answers.
type Retrieval interface {
	Search(ctx context.Context, query string, k int) ([]vectorindex.Result, error)
	Answer(ctx context.Context, question, system string, k int, temperature float32) (*retrieval.Answer, error)
}

// ChatProvider is the slice of the gemini adapter this feature consumes.
type ChatProvider interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (string, error)
	RunAgent(ctx context.Context, req gemini.AgentRequest) (*gemini.AgentResult, error)
}

type Service struct {
	loader    DocumentLoader
	index     Ingestor
	retrieval Retrieval
	provider  ChatProvider
	tools     []gemini.Tool
}

func NewService(loader DocumentLoader, index Ingestor, retrieval Retrieval, provider ChatProvider, tools []gemini.Tool) *Service {
	return &Service{loader: loader, index: index, retrieval: retrieval, provider: provider, tools: tools}
}

// Invoke forwards one system + user exchange to the chat provider.
func (s *Service) Invoke(ctx context.Context, message, system, model string, temperature float32) (string, error) {
	return s.provider.Generate(ctx, gemini.GenerateRequest{
		System:      system,
		Message:     message,
		Model:       model,
		Temperature: temperature,
	})
}

// EmbedDocuments loads and chunks the files, then embeds the chunks into
// the shared vector index.
func (s *Service) EmbedDocuments(ctx context.Context, paths []string, chunkSize, chunkOverlap int, model string) (*vectorindex.IngestSummary, error) {
	chunks, err := s.loader.Load(paths, chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	return s.index.Ingest(ctx, chunks, model)
}

// Search returns the k most similar chunks to query.
func (s *Service) Search(ctx context.Context, query string, k int) ([]vectorindex.Result, error) {
	return s.retrieval.Search(ctx, query, k)
}

// Answer answers question over the indexed chunks.
func (s *Service) Answer(ctx context.Context, question, system string, k int, temperature float32) (*retrieval.Answer, error) {
	return s.retrieval.Answer(ctx, question, system, k, temperature)
}

// Agent runs the tool-calling loop and returns the augmented transcript:
// the caller's history plus the new user turn and the final model turn.
// The caller's slice is never mutated.
func (s *Service) Agent(ctx context.Context, message string, history []gemini.Turn, system string, temperature float32) ([]gemini.Turn, []gemini.ToolEvent, error) {
	result, err := s.provider.RunAgent(ctx, gemini.AgentRequest{
		Message:     message,
		History:     history,
		System:      system,
		Temperature: temperature,
		Tools:       s.tools,
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]gemini.Turn, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, gemini.Turn{Role: "user", Content: message})
	messages = append(messages, gemini.Turn{Role: "ai", Content: result.Final})
	return messages, result.ToolEvents, nil
}
