package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigWrite   ErrorCode = "CONFIG_WRITE"
	ErrIgnorePattern ErrorCode = "IGNORE_PATTERN"

	// Template store errors
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrStoreAccess      ErrorCode = "STORE_ACCESS"

	// FileSystem errors
	ErrFileRead  ErrorCode = "FILE_READ"
	ErrFileWrite ErrorCode = "FILE_WRITE"
	ErrDirCreate ErrorCode = "DIR_CREATE"

	// Archive errors
	ErrArchiveFormat  ErrorCode = "ARCHIVE_FORMAT"
	ErrArchivePayload ErrorCode = "ARCHIVE_PAYLOAD"

	// Update check errors
	ErrUpdateCheck ErrorCode = "UPDATE_CHECK"
)

// TdmError represents a structured error with code and details
type TdmError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *TdmError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TdmError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *TdmError) Is(target error) bool {
	var targetErr *TdmError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new TdmError with the given code and message
func New(code ErrorCode, message string) *TdmError {
	return &TdmError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new TdmError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TdmError {
	return &TdmError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a TdmError
func Wrap(err error, code ErrorCode, message string) *TdmError {
	if err == nil {
		return nil
	}
	return &TdmError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TdmError {
	if err == nil {
		return nil
	}
	return &TdmError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *TdmError) WithDetail(key string, value interface{}) *TdmError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var tdmErr *TdmError
	if errors.As(err, &tdmErr) {
		return tdmErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a TdmError
func GetErrorCode(err error) ErrorCode {
	var tdmErr *TdmError
	if errors.As(err, &tdmErr) {
		return tdmErr.Code
	}
	return ErrUnknown
}
