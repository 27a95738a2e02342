package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeLoadError          = "LOAD_ERROR"
	CodeComputationError   = "COMPUTATION_ERROR"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string, cause error) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message, Cause: cause}
}

func LoadError(message string, cause error) *AppError {
	return &AppError{Code: CodeLoadError, Message: message, Cause: cause}
}

func ComputationError(message string, cause error) *AppError {
	return &AppError{Code: CodeComputationError, Message: message, Cause: cause}
}

func PreconditionFailed(message string, cause error) *AppError {
	return &AppError{Code: CodePreconditionFailed, Message: message, Cause: cause}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
