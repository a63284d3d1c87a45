package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-expense-tracker/internal/model"
)

type tokenVerifier interface {
	Verify(tokenString string, expectedType string) (*model.AuthClaims, error)
}

type contextKey string

const (
	authClaimsContextKey   contextKey = "auth_claims"
	refreshTokenContextKey contextKey = "refresh_token"
)

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth admits only requests carrying a valid access token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeUnauthorized(w, "missing or invalid authorization header")
			return
		}

		claims, err := m.verifier.Verify(token, "access")
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRefresh gates the refresh endpoint. The token may arrive as a bearer
// header or a refreshToken cookie; it is verified against the refresh secret
// before any claim is trusted. Both the claims and the raw token go into the
// context so the service can match it against the stored hash.
func (m *AuthMiddleware) RequireRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie("refreshToken"); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			writeUnauthorized(w, "missing refresh token")
			return
		}

		claims, err := m.verifier.Verify(token, "refresh")
		if err != nil {
			writeUnauthorized(w, "invalid or expired refresh token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		ctx = context.WithValue(ctx, refreshTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}

func RefreshFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(refreshTokenContextKey).(string)
	return token, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
