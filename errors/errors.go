// Package errors provides the unified error type for the leafs registry.
// Every fallible registry operation reports failure through an *AppError
// carrying a machine-readable code; no operation panics or aborts the
// process.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified error type returned by registry operations.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code when the error is
	// surfaced over the admin API.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code. This lets
// callers match on taxonomy via errors.Is without comparing messages.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Registry Error Constructors ---

// AlreadyRegistered reports a second registration for the same module.
func AlreadyRegistered(module string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyRegistered, Message: fmt.Sprintf("module %s is already registered", module),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"module": module},
	}
}

// NotRegistered reports a load attempt for a module with no factory on file.
func NotRegistered(module string) *AppError {
	return &AppError{
		Code: ErrCodeNotRegistered, Message: fmt.Sprintf("module %s is not registered", module),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"module": module},
	}
}

// NilFactory reports a nil factory supplied at registration.
func NilFactory(module string) *AppError {
	return &AppError{
		Code: ErrCodeNilFactory, Message: fmt.Sprintf("module %s was registered with a nil factory", module),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"module": module},
	}
}

// AlreadyLoaded reports a load attempt for a module that already has a live instance.
func AlreadyLoaded(module string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyLoaded, Message: fmt.Sprintf("module %s is already loaded", module),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"module": module},
	}
}

// NotLoaded reports an unload or direct lookup for a module with no live instance.
func NotLoaded(module string) *AppError {
	return &AppError{
		Code: ErrCodeNotLoaded, Message: fmt.Sprintf("module %s is not loaded", module),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"module": module},
	}
}

// NilInstance reports a factory that produced no usable instance.
func NilInstance(module string) *AppError {
	return &AppError{
		Code: ErrCodeNilInstance, Message: fmt.Sprintf("factory for module %s produced a nil instance", module),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"module": module},
	}
}

// TypeMismatch reports a typed access whose loaded instance has a different concrete type.
func TypeMismatch(module, want, got string) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("module %s has type %s, not %s", module, got, want),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"module": module, "want": want, "got": got},
	}
}

// InvalidIdentity reports a zero module identity handed to the registry.
func InvalidIdentity() *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: "module identity is empty",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidConfig reports invalid configuration.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Validation creates a new AppError for validation failures.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
