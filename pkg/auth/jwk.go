package auth

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

var errMissingKID = errors.New("JWK has no kid")

// keyDocument is a JWKS document with its entries left undecoded, so one
// malformed key does not discard the rest of the set
type keyDocument struct {
	Keys []json.RawMessage `json:"keys"`
}

// parseSigningKey decodes one JWKS entry into an *rsa.PublicKey or
// *ecdsa.PublicKey along with its kid
func parseSigningKey(raw json.RawMessage) (string, interface{}, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return "", nil, fmt.Errorf("invalid JWK: %w", err)
	}
	if jwk.KeyID == "" {
		return "", nil, errMissingKID
	}
	if jwk.Use != "" && jwk.Use != "sig" {
		return jwk.KeyID, nil, fmt.Errorf("key %s is not a signing key (use=%s)", jwk.KeyID, jwk.Use)
	}
	if !jwk.IsPublic() || !jwk.Valid() {
		return jwk.KeyID, nil, fmt.Errorf("key %s is not a valid public key", jwk.KeyID)
	}

	switch key := jwk.Key.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey:
		return jwk.KeyID, key, nil
	default:
		return jwk.KeyID, nil, fmt.Errorf("unsupported key type %T for key %s", jwk.Key, jwk.KeyID)
	}
}
