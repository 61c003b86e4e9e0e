package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/restom/restom-backend/internal/http/middleware"
	"github.com/restom/restom-backend/pkg/auth"
)

const jwtSecret = "test-secret"

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := mw.Claims(r)
		require.NotNil(t, claims)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireJWTAcceptsValidToken(t *testing.T) {
	token, err := auth.NewAccessToken(7, "555", jwtSecret, time.Hour)
	require.NoError(t, err)

	handler := mw.RequireJWT(jwtSecret)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodPost, "/admin/otp/cleanup", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireJWTExposesClaims(t *testing.T) {
	token, err := auth.NewAccessToken(7, "555", jwtSecret, time.Hour)
	require.NoError(t, err)

	var got *auth.Claims
	handler := mw.RequireJWT(jwtSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = mw.Claims(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.Sub)
	assert.Equal(t, "555", got.Phone)
}

func TestRequireJWTRejectsMissingHeader(t *testing.T) {
	handler := mw.RequireJWT(jwtSecret)(protectedEcho(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireJWTRejectsMalformedHeader(t *testing.T) {
	handler := mw.RequireJWT(jwtSecret)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireJWTRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewAccessToken(7, "555", "other-secret", time.Hour)
	require.NoError(t, err)

	handler := mw.RequireJWT(jwtSecret)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireJWTRejectsExpiredToken(t *testing.T) {
	token, err := auth.NewAccessToken(7, "555", jwtSecret, -time.Minute)
	require.NoError(t, err)

	handler := mw.RequireJWT(jwtSecret)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminKeyAcceptsMatchingKey(t *testing.T) {
	handler := mw.RequireAdminKey("admin-key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Key", "admin-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminKeyRejectsWrongKey(t *testing.T) {
	handler := mw.RequireAdminKey("admin-key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminKeyDisabledWhenUnset(t *testing.T) {
	handler := mw.RequireAdminKey("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Key", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
