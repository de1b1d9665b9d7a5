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
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Key errors
	ErrKeyCollision   ErrorCode = "KEY_COLLISION"
	ErrKeyUnmarshal   ErrorCode = "KEY_UNMARSHAL"
	ErrKeyNotPortable ErrorCode = "KEY_NOT_PORTABLE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrManifestLoad    ErrorCode = "MANIFEST_LOAD"
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"
)

// KeyregError represents a structured error with code and details
type KeyregError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KeyregError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KeyregError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KeyregError) Is(target error) bool {
	var targetErr *KeyregError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KeyregError with the given code and message
func New(code ErrorCode, message string) *KeyregError {
	return &KeyregError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KeyregError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KeyregError {
	return &KeyregError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KeyregError
func Wrap(err error, code ErrorCode, message string) *KeyregError {
	if err == nil {
		return nil
	}
	return &KeyregError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KeyregError {
	if err == nil {
		return nil
	}
	return &KeyregError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KeyregError) WithDetail(key string, value interface{}) *KeyregError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *KeyregError) WithDetails(details map[string]interface{}) *KeyregError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var kerr *KeyregError
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KeyregError
func GetErrorCode(err error) ErrorCode {
	var kerr *KeyregError
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a KeyregError
func GetErrorDetails(err error) map[string]interface{} {
	var kerr *KeyregError
	if errors.As(err, &kerr) {
		return kerr.Details
	}
	return nil
}
