// Package errors provides structured errors for the semantic search engine.
//
// Every failure surfaced by the engine carries an ErrorCode identifying what
// went wrong (missing credential, provider failure, persistence failure,
// invalid input) and an ErrorCategory that drives retry decisions and the
// HTTP status mapping in the API layer. Errors wrap their causes and are
// JSON-serializable for API responses.
package errors
