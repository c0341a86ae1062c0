package middleware

// Admin tokens are checked against the Redis allow-list and need a live
// client; those paths are exercised against a running stack. Doctor and
// patient tokens are validated purely from the JWT, which is what these
// tests cover.

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-service/config"
	"clinic-service/internal/domain/entity"
	"clinic-service/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthMiddleware() (*AuthMiddleware, *jwt.JWTService) {
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	return NewAuthMiddleware(jwtService, nil), jwtService
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	m, _ := newTestAuthMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header is required", decodeResponse(t, rec).Message)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	m, jwtService := newTestAuthMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	token, _, err := jwtService.GenerateAccessToken(7, entity.RoleDoctor)
	require.NoError(t, err)

	for _, header := range []string{token, "Token " + token, "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, "Invalid authorization header format", decodeResponse(t, rec).Message)
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	m, _ := newTestAuthMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decodeResponse(t, rec).Message)
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	m, jwtService := newTestAuthMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	token, _, err := jwtService.GenerateRefreshToken(7, entity.RoleDoctor)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token type", decodeResponse(t, rec).Message)
}

func TestAuthenticatePopulatesContext(t *testing.T) {
	m, jwtService := newTestAuthMiddleware()

	token, tokenID, err := jwtService.GenerateAccessToken(7, entity.RoleDoctor)
	require.NoError(t, err)

	var nextCalled bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true

		userID, ok := GetUserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, uint(7), userID)

		role, ok := GetRoleFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, entity.RoleDoctor, role)

		gotTokenID, ok := GetTokenIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, tokenID, gotTokenID)

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, nextCalled)
}
