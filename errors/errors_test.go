package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

func TestErrorCodes_DefaultCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCategory
	}{
		{ErrCodeEmbeddingTimeout, CategoryTransient},
		{ErrCodeEmbeddingFailed, CategoryTransient},
		{ErrCodeConfigMissing, CategoryPermanent},
		{ErrCodeInvalidInput, CategoryPermanent},
		{ErrCodeDimensionMismatch, CategoryPermanent},
		{ErrCodeRateLimit, CategoryResource},
		{ErrCodePersistence, CategoryInternal},
		{ErrCodeCorruption, CategoryInternal},
	}

	for _, tt := range tests {
		if got := tt.code.DefaultCategory(); got != tt.want {
			t.Errorf("%s: category = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestError_Retryable(t *testing.T) {
	if !EmbeddingTimeout("timed out").Retryable() {
		t.Error("timeout should be retryable by default")
	}
	if InvalidInput("empty query").Retryable() {
		t.Error("invalid input should not be retryable")
	}
	if New(ErrCodeEmbeddingTimeout, "x", WithRetryable(false)).Retryable() {
		t.Error("explicit retryable=false should win over category default")
	}
}

func TestError_Metadata(t *testing.T) {
	err := EmbeddingFailed("provider returned non-success",
		WithMetadata("status", "503"),
		WithMetadata("body", "service unavailable"))

	md := err.Metadata()
	if md["status"] != "503" {
		t.Errorf("status = %q, want 503", md["status"])
	}

	// Metadata copies must not alias internal state
	md["status"] = "200"
	if err.Metadata()["status"] != "503" {
		t.Error("metadata copy leaked back into error")
	}
}

func TestWrap_PreservesCode(t *testing.T) {
	inner := Persistence("write failed")
	outer := Wrap(inner, "saving index")

	if Code(outer) != ErrCodePersistence {
		t.Errorf("code = %s, want %s", Code(outer), ErrCodePersistence)
	}
	if outer.Unwrap() == nil {
		t.Error("wrapped error should unwrap to cause")
	}
}

func TestWrap_ContextErrors(t *testing.T) {
	if Code(Wrap(context.DeadlineExceeded, "embed")) != ErrCodeEmbeddingTimeout {
		t.Error("deadline exceeded should map to EMBEDDING_TIMEOUT")
	}
	if Code(Wrap(context.Canceled, "embed")) != ErrCodeCanceled {
		t.Error("canceled should map to CANCELED")
	}
	if Code(Wrap(fmt.Errorf("boom"), "embed")) != ErrCodeInternal {
		t.Error("unknown error should map to INTERNAL")
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, "noop") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestError_MarshalJSON(t *testing.T) {
	err := EmbeddingFailed("status 502", WithMetadata("status", "502"))

	data, merr := json.Marshal(err)
	if merr != nil {
		t.Fatalf("marshal failed: %v", merr)
	}

	var decoded map[string]interface{}
	if uerr := json.Unmarshal(data, &decoded); uerr != nil {
		t.Fatalf("unmarshal failed: %v", uerr)
	}
	if decoded["code"] != "EMBEDDING_FAILED" {
		t.Errorf("code = %v, want EMBEDDING_FAILED", decoded["code"])
	}
}
