// Package vectorindex holds the process-wide similarity index over
// embedded document chunks.
//
// The index is created lazily by the first successful ingest, which also
// fixes its embedding model for the life of the process. Later ingests
// must use the same model or are rejected without mutation. There is no
// reset path back to the empty state.
package vectorindex

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"libris/internal/apperr"
	"libris/internal/document"
)

// Embedder produces one vector per text using the named model.
type Embedder interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

type entry struct {
	content   string
	metadata  map[string]any
	vector    []float32
	magnitude float32
}

// Result is a retrieved chunk with its similarity score.
type Result struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float32        `json:"-"`
}

// IngestSummary reports the outcome of one ingest call.
type IngestSummary struct {
	Indexed int
	Total   int
	Model   string
}

// Index is safe for concurrent use. Ingestion holds the write lock for the
// whole resolve-check-embed-append sequence so two concurrent ingests can
// never both win the create-vs-append decision, and a failed embedding
// call leaves the stored model and count untouched. Searches run
// concurrently under the read lock and never observe a partial batch.
type Index struct {
	mu           sync.RWMutex
	embedder     Embedder
	defaultModel string

	model   string // empty until the first successful ingest
	entries []entry
}

func New(embedder Embedder, defaultModel string) *Index {
	return &Index{embedder: embedder, defaultModel: defaultModel}
}

// Ingest embeds chunks and appends them to the index. On the first call
// the caller's model (or the configured default) becomes the index's
// permanent embedding model; afterwards a differing explicit model is a
// conflict and nothing is mutated.
func (x *Index) Ingest(ctx context.Context, chunks []document.Chunk, model string) (*IngestSummary, error) {
	if len(chunks) == 0 {
		return nil, apperr.New(apperr.Validation, "no text chunks were produced from the supplied files")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	effective := model
	if x.model == "" {
		if effective == "" {
			effective = x.defaultModel
		}
	} else {
		if effective == "" {
			effective = x.model
		}
		if effective != x.model {
			return nil, apperr.New(apperr.Conflict, "existing vector store uses a different embedding model")
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := x.embedder.EmbedBatch(ctx, effective, texts)
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Execution, "embedding provider", err)
	}
	if len(vectors) != len(chunks) {
		return nil, apperr.New(apperr.Execution, "embedding provider returned a mismatched batch")
	}

	for i, c := range chunks {
		x.entries = append(x.entries, entry{
			content:   c.Content,
			metadata:  c.Metadata,
			vector:    vectors[i],
			magnitude: search.Float32s(vectors[i]).Magnitude(),
		})
	}
	x.model = effective

	return &IngestSummary{Indexed: len(chunks), Total: len(x.entries), Model: x.model}, nil
}

// Search embeds query with the index's model and returns the k nearest
// chunks by cosine similarity, best first.
func (x *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	x.mu.RLock()
	model := x.model
	x.mu.RUnlock()

	if model == "" {
		return nil, apperr.New(apperr.State, "vector store is empty, ingest documents first")
	}

	vectors, err := x.embedder.EmbedBatch(ctx, model, []string{query})
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Execution, "embedding provider", err)
	}
	if len(vectors) != 1 {
		return nil, apperr.New(apperr.Execution, "embedding provider returned a mismatched batch")
	}
	qv := search.Float32s(vectors[0])
	qmag := qv.Magnitude()

	x.mu.RLock()
	defer x.mu.RUnlock()

	scored := make([]Result, 0, len(x.entries))
	for _, e := range x.entries {
		sim := 1 - qv.CosineDistanceWithMagnitude(e.vector, qmag, e.magnitude)
		scored = append(scored, Result{Content: e.content, Metadata: e.metadata, Score: sim})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k < 0 {
		k = 0
	}
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Size returns the number of stored chunks.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Model returns the embedding model fixed at first ingest, or "" while the
// index is still empty.
func (x *Index) Model() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model
}

// Retriever binds a top-k to the index for retrieval-augmented workflows.
type Retriever struct {
	index *Index
	k     int
}

func (x *Index) Retriever(k int) *Retriever {
	return &Retriever{index: x, k: k}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	return r.index.Search(ctx, query, r.k)
}
