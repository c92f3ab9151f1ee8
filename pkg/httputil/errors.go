package httputil

import "net/http"

// StatusError is an error that knows the HTTP status and the client-safe
// message it should be rendered with
type StatusError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// APIError is a plain StatusError for the fixed envelope messages
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// HTTPStatus implements StatusError
func (e *APIError) HTTPStatus() int { return e.Status }

// PublicMessage implements StatusError
func (e *APIError) PublicMessage() string { return e.Message }

// Envelope errors shared by every route
var (
	ErrBadRequest       = &APIError{Status: http.StatusBadRequest, Message: "bad request"}
	ErrNotFound         = &APIError{Status: http.StatusNotFound, Message: "resource not found"}
	ErrMethodNotAllowed = &APIError{Status: http.StatusMethodNotAllowed, Message: "method not allowed"}
	ErrConflict         = &APIError{Status: http.StatusConflict, Message: "title already exists"}
	ErrUnprocessable    = &APIError{Status: http.StatusUnprocessableEntity, Message: "unprocessable"}
	ErrTooManyRequests  = &APIError{Status: http.StatusTooManyRequests, Message: "rate limit exceeded"}
	ErrInternal         = &APIError{Status: http.StatusInternalServerError, Message: "internal server error"}
)
