package httputil

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError is a typed domain error carrying the HTTP status and the
// machine-readable error code rendered to clients.
type RequestError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRequestError creates a RequestError with the given status and code
func NewRequestError(status int, code, message string) *RequestError {
	return &RequestError{Status: status, Code: code, Message: message}
}

// NotFound creates a 404 RequestError
func NotFound(code, message string) *RequestError {
	return NewRequestError(http.StatusNotFound, code, message)
}

// Unprocessable creates a 422 RequestError
func Unprocessable(code, message string) *RequestError {
	return NewRequestError(http.StatusUnprocessableEntity, code, message)
}

// WriteRequestError renders err using the platform error contract. Typed
// RequestErrors keep their status and code; everything else is a 500.
func WriteRequestError(w http.ResponseWriter, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		WriteJSON(w, reqErr.Status, reqErr)
		return
	}
	WriteJSON(w, http.StatusInternalServerError, &RequestError{
		Code:    "internal_server_error",
		Message: err.Error(),
	})
}
