package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
//
// The sync engine sorts errors into two families. Local errors
// (validation, not-found-in-cache) are raised before any network call.
// Everything else came back from, or failed on the way to, the server.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Retryable  bool
	Local      bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for common cases.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Local: true}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint, Local: true}
}

// ErrValidation rejects user input before any network call.
func ErrValidation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Local: true}
}

// ErrNotFoundLocal reports an id that is not in the local cache.
func ErrNotFoundLocal(resource string, id int64) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %d", resource, id),
		Hint:    "Run: todolite list",
		Local:   true,
	}
}

// ErrNotFound reports an id the server no longer knows.
func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		HTTPStatus: 404,
	}
}

// ErrNotFoundHint reports a reference that matched nothing in the local cache.
func ErrNotFoundHint(resource, identifier, hint string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Hint:    hint,
		Local:   true,
	}
}

func ErrAmbiguous(resource string, matches []string) *Error {
	hint := "Be more specific"
	if len(matches) > 0 && len(matches) <= 5 {
		hint = fmt.Sprintf("Did you mean: %v", matches)
	}
	return &Error{
		Code:    CodeAmbiguous,
		Message: fmt.Sprintf("Ambiguous %s", resource),
		Hint:    hint,
		Local:   true,
	}
}

func ErrRateLimit(retryAfter int) *Error {
	hint := "Try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("Try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "Rate limited",
		Hint:       hint,
		HTTPStatus: 429,
		Retryable:  true,
	}
}

// ErrNetwork wraps a transport failure (unreachable host, timeout).
func ErrNetwork(cause error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network error",
		Hint:      cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}

// ErrCircuitOpen rejects a call without touching the network.
func ErrCircuitOpen() *Error {
	return &Error{
		Code:    CodeNetwork,
		Message: "Server unavailable",
		Hint:    "Too many recent failures; requests are paused briefly",
	}
}

// ErrAPI reports a non-success status from the server.
func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}

// AsError attempts to convert an error to an *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeAPI,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsLocal reports whether err was raised before any network call.
func IsLocal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Local
}

// IsValidation reports whether err is a rejected-input error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeValidation
}

// IsNotFound reports whether err is a local or remote not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNotFound
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNetwork
}
