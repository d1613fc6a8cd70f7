// Package domain defines the core domain models for jobctl.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client-side classification of a failed
// operation, carrying a structured error code and the node's verbatim
// message where one was returned.
type DomainError struct {
	Code    string // Error code (e.g., "JC-JOB-4040")
	Message string // Human-readable message
	Details string // Optional additional details (node message passthrough)
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

// Is implements errors.Is() support for error comparison.
// Two DomainErrors match when their codes match.
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

// Error taxonomy. Each class carries a distinct process exit code so
// scripted callers can tell "job not found" from "timed out" from
// "auth failed".
var (
	// ErrAuth indicates the node rejected the credentials, or login
	// was impossible (unreachable login endpoint).
	ErrAuth = NewDomainError("JC-AUTH-4010", "authentication failed")

	// ErrNotFound indicates an unknown job or run identifier.
	ErrNotFound = NewDomainError("JC-JOB-4040", "not found")

	// ErrCreate indicates the node rejected the job specification.
	ErrCreate = NewDomainError("JC-JOB-4220", "job creation rejected")

	// ErrRun indicates the node refused to start or report on a run.
	ErrRun = NewDomainError("JC-RUN-4000", "run operation rejected")

	// ErrDelete indicates job deletion failed with a non-404 error.
	ErrDelete = NewDomainError("JC-JOB-5000", "job deletion failed")

	// ErrTransient indicates a network timeout or connection failure,
	// eligible for retry at the next poll interval.
	ErrTransient = NewDomainError("JC-NET-0000", "transient network failure")

	// ErrTimedOut indicates polling exhausted its attempt budget
	// without the run reaching a terminal status.
	ErrTimedOut = NewDomainError("JC-RUN-4080", "run polling timed out")
)

// Process exit codes, one per error class.
const (
	ExitOK        = 0
	ExitGeneric   = 1
	ExitAuth      = 2
	ExitNotFound  = 3
	ExitCreate    = 4
	ExitRun       = 5
	ExitDelete    = 6
	ExitTimedOut  = 7
	ExitTransient = 8
)

// ExitCode maps an error to its process exit code. A nil error maps
// to ExitOK; anything outside the taxonomy maps to ExitGeneric.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, ErrAuth):
		return ExitAuth
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrCreate):
		return ExitCreate
	case errors.Is(err, ErrRun):
		return ExitRun
	case errors.Is(err, ErrDelete):
		return ExitDelete
	case errors.Is(err, ErrTimedOut):
		return ExitTimedOut
	case errors.Is(err, ErrTransient):
		return ExitTransient
	default:
		return ExitGeneric
	}
}
