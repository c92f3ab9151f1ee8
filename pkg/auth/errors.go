package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AuthError
const (
	CodeMissingHeader = "missing_header"
	CodeInvalidHeader = "invalid_header"
	CodeTokenExpired  = "token_expired"
	CodeInvalidClaims = "invalid_claims"
	CodeUnauthorized  = "unauthorized"
)

// ErrKeyNotFound is returned by a KeyProvider that has no key for a kid
var ErrKeyNotFound = errors.New("signing key not found")

// AuthError is an authentication or authorization failure. It renders with
// its own status and Description.
type AuthError struct {
	Status      int
	Code        string
	Description string
	Err         error
}

// NewAuthError creates an AuthError
func NewAuthError(status int, code, description string) *AuthError {
	return &AuthError{Status: status, Code: code, Description: description}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.Status, e.Description, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Description)
}

func (e *AuthError) Unwrap() error { return e.Err }

// HTTPStatus implements httputil.StatusError
func (e *AuthError) HTTPStatus() int { return e.Status }

// PublicMessage implements httputil.StatusError
func (e *AuthError) PublicMessage() string { return e.Description }

func (e *AuthError) wrap(err error) *AuthError {
	e.Err = err
	return e
}

func errMissingHeader() *AuthError {
	return NewAuthError(http.StatusUnauthorized, CodeMissingHeader, "Authorization header is expected.")
}

func errInvalidHeader(description string) *AuthError {
	return NewAuthError(http.StatusUnauthorized, CodeInvalidHeader, description)
}

// ErrPermissionsMissing is returned when a valid token has no permissions claim
func ErrPermissionsMissing() *AuthError {
	return NewAuthError(http.StatusBadRequest, CodeInvalidClaims, "Permissions not included in JWT.")
}

// ErrPermissionNotFound is returned when the required permission is not granted
func ErrPermissionNotFound() *AuthError {
	return NewAuthError(http.StatusForbidden, CodeUnauthorized, "Permission not found.")
}
