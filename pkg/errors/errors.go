// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Timeline build errors (1100-1199)
	CodeScriptNotFound   = 1100
	CodeScriptUnparsable = 1101
	CodeAnalysisMissing  = 1102
	CodeAudioUnresolved  = 1103
	CodeEmptyTimeline    = 1104

	// Render errors (1200-1299)
	CodeRenderFailed  = 1200
	CodeRenderTimeout = 1201
	CodeEngineMissing = 1202
	CodeChunkConcat   = 1203

	// Stitch errors (1300-1399)
	CodeStitchFailed      = 1300
	CodeUnitOutputMissing = 1301

	// Post-processing errors (1400-1499)
	CodePostProcessFailed = 1400

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	// Timeline build
	ErrScriptNotFound   = New(CodeScriptNotFound, "Episode script not found")
	ErrScriptUnparsable = New(CodeScriptUnparsable, "Episode script unparsable")
	ErrEmptyTimeline    = New(CodeEmptyTimeline, "Timeline has no renderable segments")

	// Render
	ErrRenderFailed  = New(CodeRenderFailed, "Unit render failed")
	ErrRenderTimeout = New(CodeRenderTimeout, "Unit render timed out")
	ErrEngineMissing = New(CodeEngineMissing, "Rendering engine not available")

	// Stitch
	ErrStitchFailed      = New(CodeStitchFailed, "Episode stitch failed")
	ErrUnitOutputMissing = New(CodeUnitOutputMissing, "Required unit output missing")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
