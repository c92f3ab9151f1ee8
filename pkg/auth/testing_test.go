package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testAudience = "drinks"
	testKID      = "test-key-1"
)

// testIssuer serves a JWKS document and signs tokens with matching keys
type testIssuer struct {
	server  *httptest.Server
	fetches int32

	mu   sync.Mutex
	keys map[string]*rsa.PrivateKey
	fail bool
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	ti := &testIssuer{keys: map[string]*rsa.PrivateKey{}}
	ti.addKey(t, testKID)

	ti.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ti.fetches, 1)
		ti.mu.Lock()
		defer ti.mu.Unlock()
		if ti.fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		doc := jose.JSONWebKeySet{}
		for kid, key := range ti.keys {
			doc.Keys = append(doc.Keys, jose.JSONWebKey{
				Key:       &key.PublicKey,
				KeyID:     kid,
				Algorithm: "RS256",
				Use:       "sig",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(ti.server.Close)
	return ti
}

func (ti *testIssuer) addKey(t *testing.T, kid string) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ti.mu.Lock()
	ti.keys[kid] = key
	ti.mu.Unlock()
	return key
}

func (ti *testIssuer) setFailing(fail bool) {
	ti.mu.Lock()
	ti.fail = fail
	ti.mu.Unlock()
}

func (ti *testIssuer) issuer() string {
	return ti.server.URL + "/"
}

func (ti *testIssuer) jwksURL() string {
	return ti.server.URL + "/.well-known/jwks.json"
}

func (ti *testIssuer) validClaims(permissions ...string) jwt.MapClaims {
	perms := make([]interface{}, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p)
	}
	return jwt.MapClaims{
		"sub":         "auth0|barista",
		"iss":         ti.issuer(),
		"aud":         testAudience,
		"exp":         time.Now().Add(time.Hour).Unix(),
		"iat":         time.Now().Unix(),
		"permissions": perms,
	}
}

func (ti *testIssuer) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	ti.mu.Lock()
	key, ok := ti.keys[kid]
	ti.mu.Unlock()
	if !ok {
		// unknown kid: sign with a throwaway key
		var err error
		key, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func (ti *testIssuer) keySet() *KeySet {
	return NewKeySet(KeySetConfig{URL: ti.jwksURL(), TTL: time.Minute, Size: 8}, nil)
}

func (ti *testIssuer) validator() *Validator {
	return NewValidator(ti.keySet(), ValidatorConfig{
		Issuer:     ti.issuer(),
		Audience:   testAudience,
		Algorithms: []string{"RS256"},
	})
}
