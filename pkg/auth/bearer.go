package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerToken reads the token from the Authorization header
func ExtractBearerToken(r *http.Request) (string, error) {
	values := r.Header.Values("Authorization")
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return "", errMissingHeader()
	}
	if len(values) > 1 {
		return "", errInvalidHeader("Authorization header must be a single value.")
	}

	parts := strings.Fields(values[0])
	if !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidHeader(`Authorization header must start with "Bearer".`)
	}
	if len(parts) == 1 {
		return "", errInvalidHeader("Token not found.")
	}
	if len(parts) > 2 {
		return "", errInvalidHeader("Authorization header must be bearer token.")
	}

	return parts[1], nil
}
