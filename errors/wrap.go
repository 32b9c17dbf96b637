package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil. If err is already a structured Error, its
// code and category are preserved. Context deadline and cancellation errors
// map to their dedicated codes.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var serr *Error
	if errors.As(err, &serr) {
		wrapped := &Error{
			code:      serr.code,
			category:  serr.category,
			message:   message,
			cause:     err,
			metadata:  serr.Metadata(),
			retryable: serr.retryable,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeEmbeddingTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.category == category
	}
	return false
}

// IsRetryable checks if the error is retryable. Non-structured errors
// default to not retryable.
func IsRetryable(err error) bool {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Retryable()
	}
	return false
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not a structured Error.
func Code(err error) ErrorCode {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.code
	}
	return ""
}

// Category extracts the error category from an error, if available.
func Category(err error) ErrorCategory {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.category
	}
	return ""
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}
