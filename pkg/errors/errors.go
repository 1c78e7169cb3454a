package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict             = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusPreconditionRequired, "confirmation required")
	ErrDuplicateStudent     = New("DUPLICATE_STUDENT", http.StatusConflict, "student already exists for this month")
	ErrInvalidBackup        = New("INVALID_BACKUP", http.StatusBadRequest, "backup data is invalid")
	ErrKeyNotFound          = New("KEY_NOT_FOUND", http.StatusNotFound, "storage key not found")

	ErrRemoteConfig      = New("REMOTE_CONFIG_INCOMPLETE", http.StatusBadRequest, "token, owner and repository are required")
	ErrRemoteAuth        = New("REMOTE_AUTH", http.StatusBadGateway, "remote rejected the token; check that it is valid and has the repo scope")
	ErrRemoteNotFound    = New("REMOTE_NOT_FOUND", http.StatusBadGateway, "remote file not found; check owner, repository and path")
	ErrRemoteConflict    = New("REMOTE_CONFLICT", http.StatusConflict, "remote file changed since it was read; pull and push again")
	ErrRemoteUnavailable = New("REMOTE_UNAVAILABLE", http.StatusBadGateway, "remote store unavailable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// CloneWrap returns a copy of the template wrapping the provided cause.
func CloneWrap(template *Error, cause error, message string) *Error {
	clone := Clone(template, message)
	if clone != nil {
		clone.Err = cause
	}
	return clone
}
