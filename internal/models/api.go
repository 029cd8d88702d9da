package models

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is used when the backend gives no usable message.
const DefaultErrorMessage = "Something went wrong"

// ErrorKind classifies an APIError.
type ErrorKind int

const (
	KindHTTP ErrorKind = iota
	KindNetwork
	KindValidation
	KindNotFound
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	default:
		return "http"
	}
}

// APIError is the single error shape produced by the API access layer.
type APIError struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`

	cause error
}

// NewAPIError builds an error for a response that carried a status code.
func NewAPIError(status int, message string, fields map[string][]string) *APIError {
	if message == "" {
		message = DefaultErrorMessage
	}
	return &APIError{Status: status, Message: message, Errors: fields}
}

// NewNetworkError wraps a failure where no response was obtained.
func NewNetworkError(err error) *APIError {
	msg := DefaultErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Status: http.StatusInternalServerError, Message: msg, cause: err}
}

// NewValidationError builds a 422 carrying field messages.
func NewValidationError(fields map[string][]string) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, "Validation failed", fields)
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Kind reports where the error sits in the taxonomy.
func (e *APIError) Kind() ErrorKind {
	switch {
	case e.cause != nil:
		return KindNetwork
	case e.Status == http.StatusUnprocessableEntity:
		return KindValidation
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return KindAuth
	default:
		return KindHTTP
	}
}

// FieldMessages returns the first message reported for each field.
func (e *APIError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for field, msgs := range e.Errors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func hasKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind() == kind
}

func IsNotFound(err error) bool     { return hasKind(err, KindNotFound) }
func IsUnauthorized(err error) bool { return hasKind(err, KindAuth) }
func IsValidation(err error) bool   { return hasKind(err, KindValidation) }
func IsNetwork(err error) bool      { return hasKind(err, KindNetwork) }

// IsAPIErrorStatus reports whether err is an APIError with the given status.
func IsAPIErrorStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}
