package errors

import (
	"errors"
	"fmt"
)

// AppError is the structured error carried across stage boundaries
type AppError struct {
	Code    int    // business error code
	Message string // message registered for Code
	Err     error  // underlying cause, if any
	Details string
}

// Error implements the error interface
func (e *AppError) Error() string {
	switch {
	case e.Err != nil && e.Details != "":
		return fmt.Sprintf("[%d] %s: %s: %v", e.Code, e.Message, e.Details, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	case e.Details != "":
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	default:
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *AppError) HTTPStatus() int {
	return GetHTTPStatus(e.Code)
}

// New creates a new AppError with the given code
func New(code int, details ...string) *AppError {
	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Details: first(details),
	}
}

// Wrap attaches a code to err. An err that already is an AppError keeps its code.
func Wrap(err error, code int, details ...string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if d := first(details); d != "" {
			return &AppError{Code: appErr.Code, Message: appErr.Message, Err: appErr.Err, Details: d}
		}
		return appErr
	}

	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Err:     err,
		Details: first(details),
	}
}

// WrapStage re-codes err as a failure of a pipeline stage, unlike Wrap which keeps an
// existing code. The details of err are carried so the stage message reads
// "<stage> failed: <details>".
func WrapStage(err error, code int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Err:     err,
		Details: GetDetails(err),
	}
}

// Is checks if err is an AppError with the given code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ExtractCode extracts the error code from an error
func ExtractCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServer
}

// GetDetails returns the most specific human readable text for err
func GetDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Details != "" {
			return appErr.Details
		}
		if appErr.Err != nil {
			return appErr.Err.Error()
		}
		return ""
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// NewValidationError reports a request rejected before any external call
func NewValidationError(field, reason string) *AppError {
	return New(ErrInvalidParams, fmt.Sprintf("%s: %s", field, reason))
}

// NewConfigMissingError reports a required credential or setting that is absent
func NewConfigMissingError(key string) *AppError {
	return New(ErrConfigMissing, fmt.Sprintf("%s must be set", key))
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return New(ErrNotFound, resource)
}

func first(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
