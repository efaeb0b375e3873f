// Package retrieval answers questions over the vector index by stuffing
// retrieved chunks into the generation prompt.
package retrieval

import (
	"context"
	"strings"
	"time"

	"libris/internal/adapter/gemini"
	"libris/internal/middleware"
	"libris/internal/vectorindex"
)

// Searcher is the slice of the vector index this service needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]vectorindex.Result, error)
}

// Generator produces text from a system + user exchange.
type Generator interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (string, error)
}

// Answer carries the generated text plus the literal context chunks that
// conditioned it, for auditability.
type Answer struct {
	Answer  string
	Context []vectorindex.Result
}

type Service struct {
	index     Searcher
	generator Generator
	logger    *QueryLogger
}

func NewService(index Searcher, generator Generator, logger *QueryLogger) *Service {
	return &Service{index: index, generator: generator, logger: logger}
}

// Search runs a plain similarity search and records it in the query log.
func (s *Service) Search(ctx context.Context, query string, k int) ([]vectorindex.Result, error) {
	start := time.Now()

	results, err := s.index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	s.log(ctx, "search", query, len(results), start)
	return results, nil
}

// Answer retrieves the top-k chunks for question, asks the generator to
// answer using only that context, and returns both.
func (s *Service) Answer(ctx context.Context, question, system string, k int, temperature float32) (*Answer, error) {
	start := time.Now()

	docs, err := s.index.Search(ctx, question, k)
	if err != nil {
		return nil, err
	}

	var contents []string
	for _, d := range docs {
		contents = append(contents, d.Content)
	}

	answer, err := s.generator.Generate(ctx, gemini.GenerateRequest{
		System:      system + "\n\nContext:\n" + strings.Join(contents, "\n\n"),
		Message:     question,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx, "answer", question, len(docs), start)
	return &Answer{Answer: answer, Context: docs}, nil
}

func (s *Service) log(ctx context.Context, kind, query string, n int, start time.Time) {
	if s.logger == nil {
		return
	}
	s.logger.Log(QueryLogEntry{
		Kind:          kind,
		Query:         query,
		NumResults:    n,
		LatencyMs:     time.Since(start).Milliseconds(),
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
}
