package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	svc, err := NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService(t)

	pair, err := svc.IssuePair("user-1", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	t.Run("access token verifies as access", func(t *testing.T) {
		claims, err := svc.Verify(pair.AccessToken, TokenAccess)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID)
		require.Equal(t, "user@example.com", claims.Email)
		require.Equal(t, TokenAccess, claims.Type)
		require.NotEmpty(t, claims.TokenID)
	})

	t.Run("refresh token verifies as refresh", func(t *testing.T) {
		claims, err := svc.Verify(pair.RefreshToken, TokenRefresh)
		require.NoError(t, err)
		require.Equal(t, TokenRefresh, claims.Type)
	})

	t.Run("token classes cannot be swapped", func(t *testing.T) {
		_, err := svc.Verify(pair.RefreshToken, TokenAccess)
		require.Error(t, err)

		_, err = svc.Verify(pair.AccessToken, TokenRefresh)
		require.Error(t, err)
	})

	t.Run("token ids are unique per issue", func(t *testing.T) {
		second, err := svc.IssuePair("user-1", "user@example.com")
		require.NoError(t, err)

		first, err := svc.Verify(pair.AccessToken, TokenAccess)
		require.NoError(t, err)
		next, err := svc.Verify(second.AccessToken, TokenAccess)
		require.NoError(t, err)
		require.NotEqual(t, first.TokenID, next.TokenID)
	})
}

func TestTokenServiceRejects(t *testing.T) {
	t.Parallel()

	t.Run("empty secrets", func(t *testing.T) {
		_, err := NewTokenService("", "refresh", time.Minute, time.Hour)
		require.Error(t, err)

		_, err = NewTokenService("access", "", time.Minute, time.Hour)
		require.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := newTestTokenService(t)
		_, err := svc.Verify("not.a.jwt", TokenAccess)
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, err := NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)
		require.NoError(t, err)

		pair, err := svc.IssuePair("user-1", "user@example.com")
		require.NoError(t, err)

		_, err = svc.Verify(pair.AccessToken, TokenAccess)
		require.Error(t, err)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		svc := newTestTokenService(t)
		other, err := NewTokenService("other-access", "other-refresh", time.Minute, time.Hour)
		require.NoError(t, err)

		pair, err := other.IssuePair("user-1", "user@example.com")
		require.NoError(t, err)

		_, err = svc.Verify(pair.AccessToken, TokenAccess)
		require.Error(t, err)
	})
}
