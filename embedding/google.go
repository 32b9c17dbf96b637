package embedding

import (
	"context"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/alumnet/semsearch/errors"
)

// GoogleProvider generates embeddings using the official Google Gemini SDK.
// The client is created lazily on first use so a missing credential never
// stops the process from starting; embed calls fail fast until configured.
type GoogleProvider struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// GoogleConfig configures the Google embedding provider.
type GoogleConfig struct {
	APIKey string
	Model  string // default: text-embedding-004
}

// NewGoogleProvider creates a new Google embedding provider. Construction
// always succeeds; a missing API key surfaces as a configuration error on
// the first Embed call.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}
	return &GoogleProvider{
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// getClient returns the SDK client, creating it on first use.
func (p *GoogleProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeConfigInvalid,
			"failed to create google client")
	}
	p.client = client
	return client, nil
}

// Close closes the underlying client if one was created.
func (p *GoogleProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Embed generates embeddings for the given texts using a single batched call.
func (p *GoogleProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if p.apiKey == "" {
		return nil, errors.ConfigMissing("google api key is not configured")
	}
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	em := client.EmbeddingModel(p.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, classifyProviderError(err, "google embedding request failed")
	}
	if len(res.Embeddings) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeEmbeddingFailed,
			"google returned %d embeddings for %d inputs", len(res.Embeddings), len(texts))
	}

	result := make([][]float32, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, errors.Newf(errors.ErrCodeEmbeddingFailed,
				"google response missing embedding for input %d", i)
		}
		result[i] = e.Values
	}

	return result, nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *GoogleProvider) Dimension() int {
	switch p.model {
	case "text-embedding-004", "embedding-001":
		return 768
	default:
		return 768
	}
}
