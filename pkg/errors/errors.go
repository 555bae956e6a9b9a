package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error rendered into the API error envelope.
type AppError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
	StatusCode int      `json:"-"`
	Internal   error    `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError carrying err. The shared sentinels are never mutated.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Your role does not allow this operation",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request payload failed validation",
		StatusCode: http.StatusBadRequest,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	ErrUnavailable = &AppError{
		Code:       "UNAVAILABLE",
		Message:    "Service unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds an application error.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest reports a malformed request with a caller-facing message.
func NewBadRequest(message string) *AppError {
	return withMessage(ErrBadRequest, message)
}

// NewValidation reports rejected payload fields by json name.
func NewValidation(message string, fields []string) *AppError {
	appErr := withMessage(ErrValidation, message)
	appErr.Fields = fields
	return appErr
}

// NewNotFound names the club resource that could not be found.
func NewNotFound(resource string) *AppError {
	if resource == "" {
		return ErrNotFound
	}
	return withMessage(ErrNotFound, resource+" not found")
}

// NewUnavailable reports a dependency outage, keeping cause for logs only.
func NewUnavailable(dependency string, cause error) *AppError {
	return withMessage(ErrUnavailable, dependency+" unavailable").WithInternal(cause)
}

func withMessage(base *AppError, message string) *AppError {
	cpy := *base
	if message != "" {
		cpy.Message = message
	}
	return &cpy
}
