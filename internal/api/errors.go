// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/parser"
	"github.com/settings-generator/backend/internal/session"
	"github.com/settings-generator/backend/internal/upload"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes returned in the "code" field.
const (
	CodeWrongType   = "WRONG_TYPE"
	CodeWrongName   = "WRONG_NAME"
	CodeMissingFile = "MISSING_FILE"
	CodeEmptySample = "EMPTY_SAMPLE"
	CodeReadFailure = "READ_FAILURE"
	CodeNotFound    = "NOT_FOUND"
	CodeBadRequest  = "BAD_REQUEST"
)

// MissingFileMessage is shown when parse is requested for an empty slot.
const MissingFileMessage = "Enter a valid file"

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewDomainError maps intake and inference errors to their API form.
// Unknown errors become internal errors.
func NewDomainError(err error) *APIError {
	var verr *upload.ValidationError
	switch {
	case errors.As(err, &verr):
		code := CodeWrongType
		if verr.Kind == upload.WrongName {
			code = CodeWrongName
		}
		return &APIError{Status: http.StatusBadRequest, Code: code, Message: verr.Message}
	case errors.Is(err, session.ErrMissingFile):
		return &APIError{
			Status:  http.StatusConflict,
			Code:    CodeMissingFile,
			Message: MissingFileMessage,
		}
	case errors.Is(err, parser.ErrEmptySample):
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    CodeEmptySample,
			Message: parser.ErrEmptySample.Error(),
			Details: err.Error(),
		}
	case errors.Is(err, parser.ErrReadFailure):
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    CodeReadFailure,
			Message: parser.ErrReadFailure.Error(),
			Details: err.Error(),
		}
	}
	return NewInternalError("unexpected error", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
			Details: err.Error(),
		}
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}
