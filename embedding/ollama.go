package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alumnet/semsearch/errors"
)

// OllamaProvider generates embeddings using Ollama's HTTP API, for local
// or self-hosted deployments that need no credential.
type OllamaProvider struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

// OllamaConfig configures the Ollama embedding provider.
type OllamaConfig struct {
	BaseURL   string // default: http://localhost:11434
	Model     string // e.g., nomic-embed-text, mxbai-embed-large
	Dimension int    // embedding dimension (model-specific)
}

// NewOllamaProvider creates a new Ollama embedding provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		switch model {
		case "nomic-embed-text":
			dimension = 768
		case "mxbai-embed-large":
			dimension = 1024
		case "all-minilm":
			dimension = 384
		default:
			dimension = 768
		}
	}
	return &OllamaProvider{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates embeddings for the given texts. Ollama embeds one text
// per request, issued sequentially.
func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))

	for i, text := range texts {
		reqBody := ollamaEmbedRequest{
			Model: p.model,
			Input: text,
		}

		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal embedding request")
		}

		req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embed", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create embedding request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "embedding request failed")
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, errors.EmbeddingFailed("failed to read embedding response",
				errors.WithCause(err))
		}

		if resp.StatusCode != http.StatusOK {
			return nil, errors.EmbeddingFailed(
				fmt.Sprintf("ollama embedding error (status %d)", resp.StatusCode),
				errors.WithMetadata("status", fmt.Sprintf("%d", resp.StatusCode)),
				errors.WithMetadata("body", string(body)))
		}

		var embedResp ollamaEmbedResponse
		if err := json.Unmarshal(body, &embedResp); err != nil {
			return nil, errors.EmbeddingFailed("failed to parse embedding response",
				errors.WithCause(err))
		}
		if len(embedResp.Embeddings) == 0 || len(embedResp.Embeddings[0]) == 0 {
			return nil, errors.EmbeddingFailed("ollama response contained no embedding")
		}

		results[i] = embedResp.Embeddings[0]
	}

	return results, nil
}

// Dimension returns the embedding dimension.
func (p *OllamaProvider) Dimension() int {
	return p.dimension
}
