package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a remoting error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "RB-NAME-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two DomainErrors match on code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with a format string.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Naming Errors (NAME)
// ============================================================================

var (
	// ErrNotFound indicates no deployed component matches the lookup key,
	// or the component does not expose the requested contract.
	ErrNotFound = NewDomainError("RB-NAME-4040", "component not found")

	// ErrAmbiguous indicates the lookup key matches more than one deployment.
	ErrAmbiguous = NewDomainError("RB-NAME-4090", "ambiguous lookup")

	// ErrResolutionTransport indicates the naming service is unreachable.
	ErrResolutionTransport = NewDomainError("RB-NAME-5030", "naming service unreachable")
)

// ============================================================================
// Invocation Errors (CALL)
// ============================================================================

var (
	// ErrInvocation indicates a remote call failed or the remote method threw.
	ErrInvocation = NewDomainError("RB-CALL-5000", "invocation failed")

	// ErrUnknownMethod indicates the contract has no such method.
	ErrUnknownMethod = NewDomainError("RB-CALL-4050", "unknown method")

	// ErrOutOfOrder indicates a session call arrived with an unexpected
	// sequence number.
	ErrOutOfOrder = NewDomainError("RB-CALL-4091", "session call out of order")

	// ErrRateLimited indicates the server refused the call due to load.
	ErrRateLimited = NewDomainError("RB-CALL-4290", "too many requests")
)

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrSessionExpired indicates the stateful session was removed or timed out.
	ErrSessionExpired = NewDomainError("RB-SESS-4100", "session expired")
)

// ============================================================================
// Client-side Errors
// ============================================================================

var (
	// ErrReconciliation indicates a remote result did not match the locally
	// computed expected value.
	ErrReconciliation = NewDomainError("RB-RECN-4170", "reconciliation failed")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("RB-ARG-1001", "invalid argument")

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = NewDomainError("RB-SYS-5000", "internal error")
)

// knownErrors indexes every sentinel by code.
var knownErrors = map[string]*DomainError{
	ErrNotFound.Code:            ErrNotFound,
	ErrAmbiguous.Code:           ErrAmbiguous,
	ErrResolutionTransport.Code: ErrResolutionTransport,
	ErrInvocation.Code:          ErrInvocation,
	ErrUnknownMethod.Code:       ErrUnknownMethod,
	ErrOutOfOrder.Code:          ErrOutOfOrder,
	ErrRateLimited.Code:         ErrRateLimited,
	ErrSessionExpired.Code:      ErrSessionExpired,
	ErrReconciliation.Code:      ErrReconciliation,
	ErrInvalidArgument.Code:     ErrInvalidArgument,
	ErrInternal.Code:            ErrInternal,
}

// LookupError returns the sentinel registered for code, or nil.
func LookupError(code string) *DomainError {
	return knownErrors[code]
}
