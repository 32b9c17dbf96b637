package embedding

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alumnet/semsearch/errors"
)

func TestMockProvider_Deterministic(t *testing.T) {
	p := NewMockProvider(64)

	first, err := p.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(first))
	}
	if len(first[0]) != 64 {
		t.Errorf("expected dimension 64, got %d", len(first[0]))
	}

	second, _ := p.Embed(context.Background(), []string{"hello"})
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatal("same text should produce the same vector")
		}
	}
}

func TestValidateTexts(t *testing.T) {
	p := NewMockProvider(8)

	if _, err := p.Embed(context.Background(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty batch should be INVALID_INPUT, got %v", err)
	}
	if _, err := p.Embed(context.Background(), []string{"ok", ""}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty text should be INVALID_INPUT, got %v", err)
	}
}

func TestOpenAIProvider_MissingKeyFailsFast(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{})

	_, err := p.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, errors.ErrCodeConfigMissing) {
		t.Errorf("expected CONFIG_MISSING, got %v", err)
	}
}

func TestGoogleProvider_MissingKeyFailsFast(t *testing.T) {
	// Construction must succeed without a key; only the embed call fails.
	p := NewGoogleProvider(GoogleConfig{})

	_, err := p.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, errors.ErrCodeConfigMissing) {
		t.Errorf("expected CONFIG_MISSING, got %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("close without a client should be a no-op, got %v", err)
	}
}

func TestGoogleProvider_Dimension(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{APIKey: "k"})
	if got := p.Dimension(); got != 768 {
		t.Errorf("dimension = %d, want 768", got)
	}
}

func TestOpenAIProvider_Dimension(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"", 1536},
	}
	for _, tt := range tests {
		p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: tt.model})
		if got := p.Dimension(); got != tt.want {
			t.Errorf("model %q: dimension = %d, want %d", tt.model, got, tt.want)
		}
	}
}

func TestOllamaProvider_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL, Dimension: 3})

	vecs, err := p.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 3 {
		t.Fatalf("unexpected result shape: %d vectors", len(vecs))
	}
}

func TestOllamaProvider_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL})

	_, err := p.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, errors.ErrCodeEmbeddingFailed) {
		t.Fatalf("expected EMBEDDING_FAILED, got %v", err)
	}

	var serr *errors.Error
	if !stderrors.As(err, &serr) {
		t.Fatal("expected structured error")
	}
	if serr.Metadata()["status"] != "404" {
		t.Errorf("expected upstream status in metadata, got %v", serr.Metadata())
	}
}

func TestOllamaProvider_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings": []}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL})

	_, err := p.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, errors.ErrCodeEmbeddingFailed) {
		t.Errorf("missing embedding field should be EMBEDDING_FAILED, got %v", err)
	}
}

func TestEmbedOne(t *testing.T) {
	vec, err := EmbedOne(context.Background(), NewMockProvider(16), "hello")
	if err != nil {
		t.Fatalf("embed one failed: %v", err)
	}
	if len(vec) != 16 {
		t.Errorf("expected dimension 16, got %d", len(vec))
	}
}
