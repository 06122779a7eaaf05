package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/faq-chatbot/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusByCode maps domain error codes to transport statuses. Codes missing here are
// treated as internal failures.
var statusByCode = map[string]int{
	"invalid_input":       http.StatusBadRequest,
	"invalid_credentials": http.StatusUnauthorized,
	"invalid_token":       http.StatusForbidden,
	"session_not_found":   http.StatusNotFound,
	"turn_not_found":      http.StatusNotFound,
	"invalid_state":       http.StatusConflict,
	"notify_failure":      http.StatusBadGateway,
	"store_unavailable":   http.StatusServiceUnavailable,
	"persistence_failure": http.StatusServiceUnavailable,
}

// fromAppError translates a domain error. fallback names the failure when the error
// carries no known code.
func fromAppError(err error, fallback string) *HTTPError {
	code := apperrors.CodeOf(err)
	status, known := statusByCode[code]
	switch {
	case !known:
		status = http.StatusInternalServerError
		code = fallback
	case code == "invalid_input":
		code = "invalid_request"
	}
	return NewHTTPError(status, code, apperrors.Message(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if apperrors.CodeOf(err) != "" {
		return fromAppError(err, "internal_error")
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
