// Package errors provides a structured error taxonomy for task routing
// in routekit. It defines the error codes and categories that let callers
// tell a malformed request apart from a misconfigured specialist registry
// without string matching.
//
// # Error Categories
//
// Errors are classified into four categories:
//
//   - Caller: Malformed input; the caller must fix the request (empty description, etc.)
//   - Config: Misconfiguration; routing is broken until corrected (empty registry, etc.)
//   - Data: Auxiliary data-source failures where retry may succeed (knowledge index, etc.)
//   - Internal: Unexpected errors indicating bugs or invariant violations
//
// # Error Codes
//
// Each error has a specific code that identifies the type of failure:
//
//   - INVALID_REQUEST: Task description empty after trimming
//   - EMPTY_REGISTRY: No specialist profiles registered
//   - DUPLICATE_PROFILE: Profile ID registered twice
//   - CONFIG_PARSE: Profile configuration unreadable
//   - INDEX_FAILURE: Knowledge index operation failed
//   - And more...
//
// # Usage
//
// Create a new error:
//
//	err := errors.InvalidRequest("description is empty")
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "loading specialist profiles")
//
// Check the failure class:
//
//	if errors.Is(err, errors.ErrCodeEmptyRegistry) {
//	    // registry misconfigured, alert the operator
//	}
//	if errors.IsCallerError(err) {
//	    // reject the request, don't retry
//	}
//
// # JSON Serialization
//
// All errors support JSON serialization so dispatch failures can be
// reported to the calling tool verbatim:
//
//	data, err := json.Marshal(routingErr)
package errors
