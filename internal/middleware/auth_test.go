package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-expense-tracker/internal/model"
)

type fakeVerifier struct {
	token  string
	typ    string
	claims *model.AuthClaims
}

func (f *fakeVerifier) Verify(tokenString string, expectedType string) (*model.AuthClaims, error) {
	if tokenString != f.token || expectedType != f.typ {
		return nil, errors.New("invalid token")
	}
	return f.claims, nil
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	claims := &model.AuthClaims{UserID: "u1", Email: "a@b.c", Type: "access"}
	mw := NewAuthMiddleware(&fakeVerifier{token: "good-token", typ: "access", claims: claims})

	var seen *model.AuthClaims
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid bearer token passes claims through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, "u1", seen.UserID)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRefresh(t *testing.T) {
	t.Parallel()

	claims := &model.AuthClaims{UserID: "u1", Email: "a@b.c", Type: "refresh"}
	mw := NewAuthMiddleware(&fakeVerifier{token: "refresh-token", typ: "refresh", claims: claims})

	var seenToken string
	handler := mw.RequireRefresh(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenToken, _ = RefreshFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("bearer refresh token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer refresh-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "refresh-token", seenToken)
	})

	t.Run("cookie refresh token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "refresh-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("access token does not pass the refresh gate", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer access-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
