package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	// Examples: provider timeouts, temporary service unavailability.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: invalid input, missing credential, resource not found.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryResource indicates resource exhaustion or quota issues.
	// Examples: provider rate limiting, quota exceeded.
	CategoryResource ErrorCategory = "resource"

	// CategoryInternal indicates unexpected errors or system failures.
	// Examples: corrupted index file, failed disk writes.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	switch c {
	case CategoryTransient, CategoryResource:
		return true
	default:
		return false
	}
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for the engine's failure scenarios.
const (
	// Configuration errors
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING" // Credential or model not configured
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID" // Configuration present but unusable

	// Embedding provider errors
	ErrCodeEmbeddingFailed  ErrorCode = "EMBEDDING_FAILED"  // Provider returned non-success or malformed response
	ErrCodeEmbeddingTimeout ErrorCode = "EMBEDDING_TIMEOUT" // Provider call exceeded its deadline

	// Validation errors
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"      // Empty query text, malformed request
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH" // Vector lengths incompatible where strictly enforced

	// Persistence errors
	ErrCodePersistence ErrorCode = "PERSISTENCE" // Index or cache file read/write failure
	ErrCodeCorruption  ErrorCode = "CORRUPTION"  // Persisted data could not be decoded

	// Generic
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"    // Resource does not exist
	ErrCodeRateLimit   ErrorCode = "RATE_LIMITED" // Provider rate limit exceeded
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"  // Dependency temporarily unavailable
	ErrCodeCanceled    ErrorCode = "CANCELED"     // Operation was canceled
	ErrCodeInternal    ErrorCode = "INTERNAL"     // Unexpected internal error
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeEmbeddingTimeout, ErrCodeUnavailable, ErrCodeEmbeddingFailed:
		return CategoryTransient

	case ErrCodeConfigMissing, ErrCodeConfigInvalid, ErrCodeInvalidInput,
		ErrCodeDimensionMismatch, ErrCodeNotFound, ErrCodeCanceled:
		return CategoryPermanent

	case ErrCodeRateLimit:
		return CategoryResource

	case ErrCodePersistence, ErrCodeCorruption, ErrCodeInternal:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeConfigMissing:     "embedding provider not configured",
	ErrCodeConfigInvalid:     "invalid configuration",
	ErrCodeEmbeddingFailed:   "embedding provider request failed",
	ErrCodeEmbeddingTimeout:  "embedding provider request timed out",
	ErrCodeInvalidInput:      "invalid input provided",
	ErrCodeDimensionMismatch: "vector dimensions do not match",
	ErrCodePersistence:       "persistence failure",
	ErrCodeCorruption:        "persisted data is corrupt",
	ErrCodeNotFound:          "resource not found",
	ErrCodeRateLimit:         "rate limit exceeded",
	ErrCodeUnavailable:       "service temporarily unavailable",
	ErrCodeCanceled:          "operation canceled",
	ErrCodeInternal:          "internal error",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
