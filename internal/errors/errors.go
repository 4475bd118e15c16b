package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Pocket error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"    // 404
	ErrPayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE" // 413
	ErrInvalidSchema   ErrorCode = "INVALID_SCHEMA"    // 422
	ErrInternal        ErrorCode = "INTERNAL"          // 500
	ErrWriteFailed     ErrorCode = "WRITE_FAILED"      // 507
)

// PocketError represents a structured error with code, status, and details.
type PocketError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *PocketError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *PocketError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PocketError {
	return &PocketError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a capsule cannot be found.
func NewNotFound(id string) *PocketError {
	return &PocketError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *PocketError {
	return &PocketError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewPayloadTooLarge creates a 413 error when an import payload exceeds the size limit.
func NewPayloadTooLarge(max, actual int64) *PocketError {
	return &PocketError{
		Code:    ErrPayloadTooLarge,
		Status:  413,
		Message: fmt.Sprintf("import payload exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewInvalidSchema creates a 422 error for a rejected import candidate.
func NewInvalidSchema(reason string) *PocketError {
	msg := "invalid capsule schema or missing fields"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return &PocketError{
		Code:    ErrInvalidSchema,
		Status:  422,
		Message: msg,
	}
}

// NewWriteFailed creates a 507 error when the storage backend rejects a write.
func NewWriteFailed(key string, err error) *PocketError {
	msg := fmt.Sprintf("storage write failed for %s", key)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &PocketError{
		Code:    ErrWriteFailed,
		Status:  507,
		Message: msg,
		Details: map[string]any{"key": key},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PocketError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PocketError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a PocketError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PocketError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
