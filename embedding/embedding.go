// Package embedding converts text into fixed-length vectors using an
// external provider. Providers make one outbound call per invocation and do
// no caching; callers that need memoized embeddings use the job cache.
package embedding

import (
	"context"

	"github.com/alumnet/semsearch/errors"
)

// Provider generates vector embeddings for text.
//
// All vectors produced by one configured provider share a single fixed
// length, reported by Dimension.
type Provider interface {
	// Embed generates embeddings for the given texts, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int
}

// EmbedOne embeds a single text and returns its vector.
func EmbedOne(ctx context.Context, p Provider, text string) ([]float32, error) {
	vecs, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, errors.EmbeddingFailed("provider returned no embedding")
	}
	return vecs[0], nil
}

// validateTexts rejects empty batches and empty texts before any network
// call is made.
func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return errors.InvalidInput("no texts to embed")
	}
	for i, t := range texts {
		if t == "" {
			return errors.Newf(errors.ErrCodeInvalidInput, "text at position %d is empty", i)
		}
	}
	return nil
}
