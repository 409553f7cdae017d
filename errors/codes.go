package errors

// ErrorCategory classifies errors by who has to act to resolve them.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryCaller indicates a malformed request. The caller must fix the
	// input before retrying; retrying the same call cannot succeed.
	CategoryCaller ErrorCategory = "caller"

	// CategoryConfig indicates a misconfigured registry or profile set.
	// Routing stays broken until the configuration is corrected.
	CategoryConfig ErrorCategory = "config"

	// CategoryData indicates a failure in an auxiliary data source such as
	// the knowledge index. These may succeed on retry.
	CategoryData ErrorCategory = "data"

	// CategoryInternal indicates unexpected errors, bugs, or invariant
	// violations.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryData
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for routing failure scenarios.
const (
	// Caller errors
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST" // Empty or malformed task request
	ErrCodeCanceled       ErrorCode = "CANCELED"        // Caller canceled the operation

	// Configuration errors
	ErrCodeEmptyRegistry    ErrorCode = "EMPTY_REGISTRY"    // No profiles registered
	ErrCodeMissingFallback  ErrorCode = "MISSING_FALLBACK"  // Generalist fallback profile absent
	ErrCodeDuplicateProfile ErrorCode = "DUPLICATE_PROFILE" // Profile ID already registered
	ErrCodeInvalidProfile   ErrorCode = "INVALID_PROFILE"   // Profile failed validation
	ErrCodeProfileNotFound  ErrorCode = "PROFILE_NOT_FOUND" // Referenced profile does not exist
	ErrCodeConfigParse      ErrorCode = "CONFIG_PARSE"      // Profile configuration unreadable

	// Data errors
	ErrCodeIndexFailure ErrorCode = "INDEX_FAILURE" // Knowledge index operation failed
	ErrCodeTimeout      ErrorCode = "TIMEOUT"       // Auxiliary lookup timed out

	// Internal errors
	ErrCodeInternal  ErrorCode = "INTERNAL"  // Unexpected internal error
	ErrCodeAssertion ErrorCode = "ASSERTION" // Assertion/invariant violation
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeInvalidRequest, ErrCodeCanceled:
		return CategoryCaller

	case ErrCodeEmptyRegistry, ErrCodeMissingFallback, ErrCodeDuplicateProfile,
		ErrCodeInvalidProfile, ErrCodeProfileNotFound, ErrCodeConfigParse:
		return CategoryConfig

	case ErrCodeIndexFailure, ErrCodeTimeout:
		return CategoryData

	case ErrCodeInternal, ErrCodeAssertion:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeInvalidRequest:   "task request is empty or malformed",
	ErrCodeCanceled:         "operation canceled",
	ErrCodeEmptyRegistry:    "no specialist profiles registered",
	ErrCodeMissingFallback:  "generalist fallback profile not registered",
	ErrCodeDuplicateProfile: "specialist profile already registered",
	ErrCodeInvalidProfile:   "specialist profile failed validation",
	ErrCodeProfileNotFound:  "specialist profile not found",
	ErrCodeConfigParse:      "profile configuration could not be parsed",
	ErrCodeIndexFailure:     "knowledge index operation failed",
	ErrCodeTimeout:          "auxiliary lookup timed out",
	ErrCodeInternal:         "internal error",
	ErrCodeAssertion:        "assertion failed",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
