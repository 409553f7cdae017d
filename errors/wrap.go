package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a routekit Error, it wraps it with the new message while
// keeping its code, category and metadata.
// Otherwise, it creates a new Internal error wrapping the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var rerr *Error
	if errors.As(err, &rerr) {
		wrapped := &Error{
			code:      rerr.code,
			category:  rerr.category,
			message:   message,
			cause:     err,
			metadata:  rerr.Metadata(),
			retryable: rerr.retryable,
			profileID: rerr.profileID,
			requestID: rerr.requestID,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Context errors map onto the data codes so callers can still
	// distinguish cancellation from genuine index failures.
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
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

// AsRoutingError attempts to extract a RoutingError from an error chain.
// Returns nil if no RoutingError is found.
func AsRoutingError(err error) RoutingError {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.category == category
	}
	return false
}

// IsRetryable checks if the error is retryable.
func IsRetryable(err error) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Retryable()
	}
	// Default to not retryable for unknown errors
	return false
}

// IsCallerError checks if the error is the caller's to fix.
func IsCallerError(err error) bool {
	return IsCategory(err, CategoryCaller)
}

// IsConfigError checks if the error indicates misconfiguration.
func IsConfigError(err error) bool {
	return IsCategory(err, CategoryConfig)
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not a routekit Error.
func Code(err error) ErrorCode {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.code
	}
	return ""
}

// Category extracts the error category from an error, if available.
// Returns empty string if err is not a routekit Error.
func Category(err error) ErrorCategory {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.category
	}
	return ""
}

// GetMetadata extracts metadata from an error.
// Returns nil if err is not a routekit Error.
func GetMetadata(err error) map[string]string {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Metadata()
	}
	return nil
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

// Join combines multiple errors into a single error.
// Uses errors.Join from the standard library.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
