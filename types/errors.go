package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable machine-readable classification attached to every
// error surfaced to a caller.
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "validation_error"
	ErrKindScopeConflict   ErrorKind = "scope_conflict"
	ErrKindNotFound        ErrorKind = "not_found"
	ErrKindUpstreamTimeout ErrorKind = "upstream_timeout"
	ErrKindUpstream        ErrorKind = "upstream_error"
	ErrKindSynthesis       ErrorKind = "synthesis_error"
	ErrKindInternal        ErrorKind = "internal_error"
)

// HTTPStatus maps the kind to its HTTP equivalent.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrKindValidation:
		return http.StatusBadRequest
	case ErrKindScopeConflict:
		return http.StatusConflict
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrKindUpstream, ErrKindSynthesis:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError pairs a kind with a human-readable message. The message never
// carries internal stack detail.
type AppError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// NewAppError builds an AppError with a formatted message.
func NewAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapAppError keeps the underlying error reachable through errors.Is while
// presenting only the given message to callers.
func WrapAppError(kind ErrorKind, cause error, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrKindInternal
}

// MessageOf extracts the caller-safe message from an error chain. Errors
// without an AppError in the chain report a generic message so internal
// detail never leaks.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
