package retrieval_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libris/internal/adapter/gemini"
	"libris/internal/apperr"
	"libris/internal/retrieval"
	"libris/internal/vectorindex"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, k int) ([]vectorindex.Result, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vectorindex.Result), args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req gemini.GenerateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestAnswer_StuffsContextIntoPrompt(t *testing.T) {
	searcher := new(MockSearcher)
	generator := new(MockGenerator)
	svc := retrieval.NewService(searcher, generator, nil)

	docs := []vectorindex.Result{
		{Content: "chunk one", Metadata: map[string]any{"source": "a.pdf"}},
		{Content: "chunk two", Metadata: map[string]any{"source": "a.pdf"}},
	}
	searcher.On("Search", mock.Anything, "what is X?", 4).Return(docs, nil)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req gemini.GenerateRequest) bool {
		return req.Message == "what is X?" &&
			assert.ObjectsAreEqual(float32(0.1), req.Temperature) &&
			// System prompt must carry both chunks verbatim.
			bytes.Contains([]byte(req.System), []byte("chunk one")) &&
			bytes.Contains([]byte(req.System), []byte("chunk two")) &&
			bytes.Contains([]byte(req.System), []byte("You are a domain expert"))
	})).Return("X is Y.", nil)

	ans, err := svc.Answer(context.Background(), "what is X?", "You are a domain expert. Use only the provided context to answer.", 4, 0.1)
	require.NoError(t, err)
	assert.Equal(t, "X is Y.", ans.Answer)
	assert.Equal(t, docs, ans.Context)
	searcher.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestAnswer_EmptyIndexPropagatesStateError(t *testing.T) {
	searcher := new(MockSearcher)
	generator := new(MockGenerator)
	svc := retrieval.NewService(searcher, generator, nil)

	searcher.On("Search", mock.Anything, "q", 4).
		Return(nil, apperr.New(apperr.State, "vector store is empty, ingest documents first"))

	_, err := svc.Answer(context.Background(), "q", "sys", 4, 0.1)
	require.Error(t, err)
	assert.Equal(t, apperr.State, apperr.KindOf(err))
	generator.AssertNotCalled(t, "Generate")
}

func TestSearch_LogsQuery(t *testing.T) {
	searcher := new(MockSearcher)
	var buf bytes.Buffer
	svc := retrieval.NewService(searcher, nil, retrieval.NewQueryLogger(&buf))

	searcher.On("Search", mock.Anything, "find me", 2).
		Return([]vectorindex.Result{{Content: "hit"}}, nil)

	results, err := svc.Search(context.Background(), "find me", 2)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	var entry retrieval.QueryLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "search", entry.Kind)
	assert.Equal(t, "find me", entry.Query)
	assert.Equal(t, 1, entry.NumResults)
}
