package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a mapjournal error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrValidation     ErrorCode = "VALIDATION"      // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrSchemaMismatch ErrorCode = "SCHEMA_MISMATCH" // 500
	ErrNotOpen        ErrorCode = "NOT_OPEN"        // 503
)

// JournalError represents a structured error with code, status, and details.
type JournalError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *JournalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *JournalError {
	return &JournalError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing trip, point or media item.
func NewNotFound(kind string, id any) *JournalError {
	return &JournalError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %v", kind, id),
		Details: map[string]any{"kind": kind, "identifier": id},
	}
}

// NewFileNotFound creates a 404 error for a missing file on disk.
func NewFileNotFound(path string) *JournalError {
	return &JournalError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewValidation creates a 422 error for a rejected field value.
func NewValidation(field string, msg string) *JournalError {
	return &JournalError{
		Code:    ErrValidation,
		Status:  422,
		Message: fmt.Sprintf("invalid %s: %s", field, msg),
		Details: map[string]any{"field": field},
	}
}

// NewCancelled creates a 499 error when an operation's context is cancelled.
func NewCancelled(op string) *JournalError {
	return &JournalError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewSchemaMismatch creates a 500 error when a result set does not have the
// column layout the schema contract promises.
func NewSchemaMismatch(table string, want, got int) *JournalError {
	return &JournalError{
		Code:    ErrSchemaMismatch,
		Status:  500,
		Message: fmt.Sprintf("%s: expected %d columns, got %d", table, want, got),
		Details: map[string]any{"table": table, "want_columns": want, "got_columns": got},
	}
}

// NewNotOpen creates a 503 error for use of a storage handle that is not open.
func NewNotOpen() *JournalError {
	return &JournalError{
		Code:    ErrNotOpen,
		Status:  503,
		Message: "database is not open",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *JournalError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &JournalError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a JournalError with the given code.
func Is(err error, code ErrorCode) bool {
	var jErr *JournalError
	if stderrors.As(err, &jErr) {
		return jErr.Code == code
	}
	return false
}
