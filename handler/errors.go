package handler

import (
	"errors"
	"net/http"
)

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response.
	ErrNilResponse = errors.New("handler returned nil response")
)

// HTTPError is an error with a status code, a machine-readable key and a
// client-facing message.
type HTTPError struct {
	Code    int
	Key     string
	Message string
	// Details maps field names to messages. Only validation errors set it.
	Details map[string]string
	// Meta is merged into the top level of the error body.
	Meta map[string]any
}

func (e HTTPError) Error() string {
	return e.Key
}

// WithMessage returns a copy of e with a different client message.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request", Message: "Bad request"}
	ErrUnauthorized          = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized", Message: "Unauthorized"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found", Message: "Not found"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type", Message: "Unsupported media type"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large", Message: "Request body too large"}
	ErrInternalServerError   = HTTPError{Code: http.StatusInternalServerError, Key: "server_error", Message: "Server error"}
)
