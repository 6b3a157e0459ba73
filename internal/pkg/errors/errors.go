package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for each error type
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Ingestion errors
	ErrCodeSourceAccess        ErrorCode = "SOURCE_ACCESS"
	ErrCodeEmptyInput          ErrorCode = "EMPTY_INPUT"
	ErrCodeEncodingFailure     ErrorCode = "ENCODING_FAILURE"
	ErrCodeUnsupportedEncoding ErrorCode = "UNSUPPORTED_ENCODING"
	ErrCodeInvalidBatchSize    ErrorCode = "INVALID_BATCH_SIZE"
	ErrCodeFileTooLarge        ErrorCode = "FILE_TOO_LARGE"

	// Validation errors
	ErrCodeInvalidRule ErrorCode = "INVALID_RULE"

	// Infrastructure errors
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"
	ErrCodeQueueError    ErrorCode = "QUEUE_ERROR"
	ErrCodeStorageError  ErrorCode = "STORAGE_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional context to the error
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func SourceAccess(err error, path string) *AppError {
	return Wrap(err, ErrCodeSourceAccess, fmt.Sprintf("cannot read source: %s", path))
}

func EmptyInput(name string) *AppError {
	return New(ErrCodeEmptyInput, fmt.Sprintf("source contains no header or data lines: %s", name))
}

func EncodingFailure(err error, encoding string) *AppError {
	return Wrap(err, ErrCodeEncodingFailure, fmt.Sprintf("failed to decode input as %s", encoding))
}

func UnsupportedEncoding(encoding string) *AppError {
	return New(ErrCodeUnsupportedEncoding, fmt.Sprintf("unsupported encoding: %s", encoding))
}

func InvalidBatchSize(size int) *AppError {
	return New(ErrCodeInvalidBatchSize, fmt.Sprintf("batch size must be >= 1, got %d", size))
}

func FileTooLarge(size, max int64) *AppError {
	return New(ErrCodeFileTooLarge, fmt.Sprintf("file size %d exceeds maximum %d", size, max))
}

func InvalidRule(message string) *AppError {
	return New(ErrCodeInvalidRule, message)
}

func DatabaseError(err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "database operation failed")
}

func CacheError(err error) *AppError {
	return Wrap(err, ErrCodeCacheError, "cache operation failed")
}

func QueueError(err error) *AppError {
	return Wrap(err, ErrCodeQueueError, "queue operation failed")
}

func StorageError(err error, message string) *AppError {
	return Wrap(err, ErrCodeStorageError, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == code
}
