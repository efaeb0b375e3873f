package gemini

import (
	"context"

	"github.com/google/generative-ai-go/genai"

	"libris/internal/apperr"
)

// EmbedBatch embeds texts with the named model in a single provider call.
// The result has exactly one vector per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	api, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	em := api.EmbeddingModel(model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, apperr.Wrap(apperr.Execution, "embedding provider", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, apperr.Newf(apperr.Execution, "embedding provider returned %d vectors for %d texts", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, apperr.New(apperr.Execution, "embedding provider returned an empty vector")
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}
