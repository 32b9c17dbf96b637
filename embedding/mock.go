package embedding

import "context"

// MockProvider is a deterministic embedding provider for tests. The same
// text always produces the same vector, and no network calls are made.
type MockProvider struct {
	dimension int
}

// NewMockProvider creates a mock provider with the given dimension.
func NewMockProvider(dimension int) *MockProvider {
	return &MockProvider{dimension: dimension}
}

// Embed returns deterministic fake embeddings derived from the text bytes.
func (p *MockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, p.dimension)
		for j := 0; j < p.dimension; j++ {
			vec[j] = float32(text[j%len(text)]) / 256.0
		}
		results[i] = vec
	}
	return results, nil
}

// Dimension returns the embedding dimension.
func (p *MockProvider) Dimension() int {
	return p.dimension
}
