package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorEnvelope is the body of every failed response
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteErrorEnvelope writes {"success": false, "error": status, "message": message}
func WriteErrorEnvelope(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorEnvelope{
		Success: false,
		Error:   status,
		Message: message,
	})
}

// WriteAPIError renders err through the envelope. Errors that implement
// StatusError choose their own status and message; anything else becomes a
// 500 without leaking the underlying error text.
func WriteAPIError(w http.ResponseWriter, err error) {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		WriteErrorEnvelope(w, statusErr.HTTPStatus(), statusErr.PublicMessage())
		return
	}
	WriteErrorEnvelope(w, ErrInternal.Status, ErrInternal.Message)
}

// StatusOf returns the status WriteAPIError would use for err
func StatusOf(err error) int {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// NotFoundHandler renders unknown routes through the envelope
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteAPIError(w, ErrNotFound)
	})
}

// MethodNotAllowedHandler renders 405s through the envelope
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteAPIError(w, ErrMethodNotAllowed)
	})
}
