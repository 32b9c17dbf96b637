package embedding

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/alumnet/semsearch/errors"
)

// OpenAIProvider generates embeddings using the official OpenAI SDK.
type OpenAIProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

// OpenAIConfig configures the OpenAI embedding provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string // default: text-embedding-3-small
	BaseURL string // optional custom endpoint
}

// NewOpenAIProvider creates a new OpenAI embedding provider. A missing API
// key is not an error here: construction succeeds and Embed fails fast with
// a configuration error until a key is supplied.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIProvider{
		client: &client,
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// Embed generates embeddings for the given texts.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if p.apiKey == "" {
		return nil, errors.ConfigMissing("openai api key is not configured")
	}
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, classifyProviderError(err, "openai embedding request failed")
	}

	if len(resp.Data) == 0 {
		return nil, errors.EmbeddingFailed("openai response contained no embedding data")
	}

	result := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if int(d.Index) >= len(result) {
			continue
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		result[int(d.Index)] = vec
	}
	for i, v := range result {
		if v == nil {
			return nil, errors.Newf(errors.ErrCodeEmbeddingFailed,
				"openai response missing embedding for input %d", i)
		}
	}

	return result, nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *OpenAIProvider) Dimension() int {
	switch p.model {
	case "text-embedding-3-small":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}

// classifyProviderError maps an SDK or transport error onto the engine's
// error codes. The SDK does not expose a stable typed error across
// transports, so classification inspects the message.
func classifyProviderError(err error, message string) error {
	if werr := errors.Wrap(err, message); werr.Code() == errors.ErrCodeEmbeddingTimeout ||
		werr.Code() == errors.ErrCodeCanceled {
		return werr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return errors.New(errors.ErrCodeRateLimit, message, errors.WithCause(err))
	case strings.Contains(msg, "401") || strings.Contains(msg, "api key"):
		return errors.ConfigMissing(message, errors.WithCause(err))
	default:
		return errors.EmbeddingFailed(message, errors.WithCause(err))
	}
}
