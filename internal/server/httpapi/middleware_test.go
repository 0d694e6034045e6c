package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"abc.def.ghi", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, bearerToken(tt.header))
		})
	}
}

func TestAuthenticate_NoToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/users/profile", "", "")
	requireError(t, rec, http.StatusUnauthorized, "Access denied. No token provided.")

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rec = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	requireError(t, rec, http.StatusUnauthorized, "Access denied. No token provided.")
}

func TestAuthenticate_BadTokensFailAlike(t *testing.T) {
	env := newTestEnv(t)

	userTok := env.token(t, aliceID, false)
	adminTok := env.token(t, adminID, true)

	// admin payload under a non-admin signature
	u, a := strings.Split(userTok, "."), strings.Split(adminTok, ".")
	forged := strings.Join([]string{u[0], a[1], u[2]}, ".")

	expired, err := auth.NewTokenService([]byte(testSecret), -time.Minute).Issue(aliceID, false)
	require.NoError(t, err)

	otherKey, err := auth.NewTokenService([]byte("other-secret"), time.Hour).Issue(aliceID, false)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"forged":    forged,
		"expired":   expired,
		"other key": otherKey,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.doJSON(t, http.MethodGet, "/api/users/profile", "", tok)
			requireError(t, rec, http.StatusForbidden, "Invalid token.")
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"Lamp","price":10}`

	rec := env.doJSON(t, http.MethodPost, "/api/items/add", body, env.token(t, aliceID, false))
	requireError(t, rec, http.StatusForbidden, "Access denied. Admin only.")
	assert.Empty(t, env.items.created)

	rec = env.doJSON(t, http.MethodPost, "/api/items/add", body, env.token(t, adminID, true))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, env.items.created, 1)
}

func TestRequireAdmin_WithoutClaims(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	called := false
	h := requireAdmin(func(echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, h(c))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied. No token provided."}`, rec.Body.String())
}
