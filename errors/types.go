package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Repository state errors
	ErrCodeRepoState   ErrorCode = "REPO_STATE"
	ErrCodeNotAProject ErrorCode = "NOT_A_PROJECT"
	ErrCodeStaleBranch ErrorCode = "STALE_BRANCH"

	// Template and version errors
	ErrCodeInvalidTemplate ErrorCode = "INVALID_TEMPLATE"
	ErrCodeVersionLookup   ErrorCode = "VERSION_LOOKUP"
	ErrCodeSchemaFetch     ErrorCode = "SCHEMA_FETCH"
	ErrCodeOutOfDate       ErrorCode = "OUT_OF_DATE"

	// Forge errors
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrCodeForgeRequest      ErrorCode = "FORGE_REQUEST"

	// Local execution errors
	ErrCodeCommandFailed ErrorCode = "COMMAND_FAILED"
	ErrCodeRenderFailed  ErrorCode = "RENDER_FAILED"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// GraftError represents a structured error with context
type GraftError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *GraftError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GraftError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *GraftError) WithDetail(key string, value interface{}) *GraftError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *GraftError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new GraftError
func New(code ErrorCode, message string) *GraftError {
	return &GraftError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a GraftError
func Wrap(err error, code ErrorCode, message string) *GraftError {
	return &GraftError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific GraftError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	graftErr, ok := err.(*GraftError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return graftErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	graftErr, ok := err.(*GraftError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return graftErr.Code
}
