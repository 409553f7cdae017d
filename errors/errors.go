package errors

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoutingError is the interface for all structured errors in routekit.
// It extends the standard error interface with context for dispatch
// diagnostics and caller-side handling decisions.
type RoutingError interface {
	error

	// Code returns the specific error code identifying the failure type.
	Code() ErrorCode

	// Category returns the error category for handling decisions.
	Category() ErrorCategory

	// Retryable returns true if the operation may succeed on retry.
	Retryable() bool

	// Metadata returns additional context as key-value pairs.
	Metadata() map[string]string

	// Unwrap returns the underlying error, if any.
	Unwrap() error
}

// Error is the concrete implementation of RoutingError.
type Error struct {
	code      ErrorCode
	category  ErrorCategory
	message   string
	cause     error
	metadata  map[string]string
	retryable *bool // nil means use default based on category
	timestamp time.Time
	profileID string // related specialist profile, if applicable
	requestID string // related request, if applicable
}

// Ensure Error implements RoutingError and json.Marshaler/Unmarshaler.
var (
	_ RoutingError     = (*Error)(nil)
	_ json.Marshaler   = (*Error)(nil)
	_ json.Unmarshaler = (*Error)(nil)
)

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.category
}

// Retryable returns whether this error is retryable.
func (e *Error) Retryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	return e.category.IsRetryable()
}

// Metadata returns the error metadata.
func (e *Error) Metadata() map[string]string {
	if e.metadata == nil {
		return make(map[string]string)
	}
	// Return a copy to prevent modification
	result := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		result[k] = v
	}
	return result
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Timestamp returns when the error occurred.
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// ProfileID returns the related specialist profile ID, if set.
func (e *Error) ProfileID() string {
	return e.profileID
}

// RequestID returns the related request ID, if set.
func (e *Error) RequestID() string {
	return e.requestID
}

// errorJSON is the JSON representation of an Error.
type errorJSON struct {
	Code      ErrorCode         `json:"code"`
	Category  ErrorCategory     `json:"category"`
	Message   string            `json:"message"`
	Cause     string            `json:"cause,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Retryable bool              `json:"retryable"`
	Timestamp string            `json:"timestamp,omitempty"`
	ProfileID string            `json:"profile_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	j := errorJSON{
		Code:      e.code,
		Category:  e.category,
		Message:   e.message,
		Metadata:  e.metadata,
		Retryable: e.Retryable(),
		ProfileID: e.profileID,
		RequestID: e.requestID,
	}
	if e.cause != nil {
		j.Cause = e.cause.Error()
	}
	if !e.timestamp.IsZero() {
		j.Timestamp = e.timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Error) UnmarshalJSON(data []byte) error {
	var j errorJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	e.code = j.Code
	e.category = j.Category
	e.message = j.Message
	e.metadata = j.Metadata
	e.profileID = j.ProfileID
	e.requestID = j.RequestID
	r := j.Retryable
	e.retryable = &r
	if j.Cause != "" {
		e.cause = fmt.Errorf("%s", j.Cause)
	}
	if j.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, j.Timestamp); err == nil {
			e.timestamp = t
		}
	}
	return nil
}

// Option is a functional option for configuring an Error.
type Option func(*Error)

// WithCategory overrides the default category.
func WithCategory(cat ErrorCategory) Option {
	return func(e *Error) {
		e.category = cat
	}
}

// WithRetryable explicitly sets whether the error is retryable.
func WithRetryable(retryable bool) Option {
	return func(e *Error) {
		e.retryable = &retryable
	}
}

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(e *Error) {
		if e.metadata == nil {
			e.metadata = make(map[string]string)
		}
		e.metadata[key] = value
	}
}

// WithMetadataMap adds multiple metadata key-value pairs.
func WithMetadataMap(m map[string]string) Option {
	return func(e *Error) {
		if e.metadata == nil {
			e.metadata = make(map[string]string)
		}
		for k, v := range m {
			e.metadata[k] = v
		}
	}
}

// WithProfileID sets the related specialist profile ID.
func WithProfileID(id string) Option {
	return func(e *Error) {
		e.profileID = id
	}
}

// WithRequestID sets the related request ID.
func WithRequestID(id string) Option {
	return func(e *Error) {
		e.requestID = id
	}
}

// WithTimestamp sets a custom timestamp.
func WithTimestamp(t time.Time) Option {
	return func(e *Error) {
		e.timestamp = t
	}
}

// WithCause sets the underlying cause.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string, opts ...Option) *Error {
	e := &Error{
		code:      code,
		category:  code.DefaultCategory(),
		message:   message,
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// FromCode creates an error with the default description for the code.
func FromCode(code ErrorCode, opts ...Option) *Error {
	return New(code, code.Description(), opts...)
}

// InvalidRequest creates an invalid request error.
func InvalidRequest(message string, opts ...Option) *Error {
	return New(ErrCodeInvalidRequest, message, opts...)
}

// EmptyRegistry creates an empty registry error.
func EmptyRegistry(message string, opts ...Option) *Error {
	return New(ErrCodeEmptyRegistry, message, opts...)
}

// MissingFallback creates a missing fallback error for the given profile ID.
func MissingFallback(id string, opts ...Option) *Error {
	opts = append([]Option{WithProfileID(id)}, opts...)
	return New(ErrCodeMissingFallback, fmt.Sprintf("fallback profile %q is not registered", id), opts...)
}

// DuplicateProfile creates a duplicate profile error.
func DuplicateProfile(id string, opts ...Option) *Error {
	opts = append([]Option{WithProfileID(id)}, opts...)
	return New(ErrCodeDuplicateProfile, fmt.Sprintf("profile %q is already registered", id), opts...)
}

// InvalidProfile creates an invalid profile error.
func InvalidProfile(id, reason string, opts ...Option) *Error {
	opts = append([]Option{WithProfileID(id)}, opts...)
	return New(ErrCodeInvalidProfile, fmt.Sprintf("profile %q invalid: %s", id, reason), opts...)
}

// ProfileNotFound creates a profile not found error.
func ProfileNotFound(id string, opts ...Option) *Error {
	opts = append([]Option{WithProfileID(id)}, opts...)
	return New(ErrCodeProfileNotFound, fmt.Sprintf("profile %q not found", id), opts...)
}

// ConfigParse creates a configuration parse error.
func ConfigParse(message string, opts ...Option) *Error {
	return New(ErrCodeConfigParse, message, opts...)
}

// IndexFailure creates a knowledge index error.
func IndexFailure(message string, opts ...Option) *Error {
	return New(ErrCodeIndexFailure, message, opts...)
}

// Timeout creates a timeout error.
func Timeout(message string, opts ...Option) *Error {
	return New(ErrCodeTimeout, message, opts...)
}

// Internal creates an internal error.
func Internal(message string, opts ...Option) *Error {
	return New(ErrCodeInternal, message, opts...)
}
