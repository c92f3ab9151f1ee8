package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/coffeeshop/pkg/auth"
	"github.com/platinummonkey/coffeeshop/pkg/drinks"
	"github.com/platinummonkey/coffeeshop/pkg/middleware"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
	"github.com/platinummonkey/coffeeshop/pkg/storage"
)

const (
	testIssuer   = "https://coffeeshop.test/"
	testAudience = "drinks"
	testKID      = "api-test-key"
)

type staticKeys map[string]interface{}

func (s staticKeys) Key(_ context.Context, kid string) (interface{}, error) {
	key, ok := s[kid]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return key, nil
}

// testEnv is a server backed by in-memory SQLite and a local signing key
type testEnv struct {
	handler http.Handler
	repo    storage.DrinkRepository
	key     *rsa.PrivateKey
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.Open(context.Background(), storage.Config{Driver: storage.DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewSQLStore(db, storage.DriverSQLite)
	require.NoError(t, repo.Migrate(context.Background()))

	return newTestEnvWithRepo(t, repo)
}

func newTestEnvWithRepo(t *testing.T, repo storage.DrinkRepository) *testEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	validator := auth.NewValidator(staticKeys{testKID: &key.PublicKey}, auth.ValidatorConfig{
		Issuer:     testIssuer,
		Audience:   testAudience,
		Algorithms: []string{"RS256"},
	})
	logger := observability.NewNopLogger()
	gate := middleware.NewGate(validator, logger, nil)

	return &testEnv{
		handler: NewServer(repo, gate, logger).Handler(),
		repo:    repo,
		key:     key,
	}
}

func (e *testEnv) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(e.key)
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "auth0|barista",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

// tokenWith returns a bearer token granting perms
func (e *testEnv) tokenWith(t *testing.T, perms ...auth.Permission) string {
	claims := baseClaims()
	list := make([]interface{}, 0, len(perms))
	for _, p := range perms {
		list = append(list, string(p))
	}
	claims["permissions"] = list
	return e.sign(t, claims)
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, title string, recipe ...drinks.Ingredient) drinks.Drink {
	t.Helper()
	d := &drinks.Drink{Title: title, Recipe: recipe}
	require.NoError(t, e.repo.Insert(context.Background(), d))
	return *d
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func water() drinks.Ingredient {
	return drinks.Ingredient{Color: "blue", Name: "water", Parts: 1}
}
