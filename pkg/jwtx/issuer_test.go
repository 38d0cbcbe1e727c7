package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "agentinvest-auth",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	iss := testIssuer()

	token, err := iss.IssueAccessToken("user-1", "alice@x.com", "free")
	require.NoError(t, err)

	claims, err := iss.VerifyAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "alice@x.com", claims.Email)
	require.Equal(t, "free", claims.SubscriptionTier)
	require.Equal(t, "agentinvest-auth", claims.Issuer)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()
	iss := testIssuer()

	token, tokenID, err := iss.IssueRefreshToken("user-1", "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := iss.VerifyRefreshToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "alice@x.com", claims.Email)
	require.Equal(t, tokenID, claims.TokenID)

	// Two issuances for the same identity never collide.
	other, otherID, err := iss.IssueRefreshToken("user-1", "alice@x.com")
	require.NoError(t, err)
	require.NotEqual(t, token, other)
	require.NotEqual(t, tokenID, otherID)
}

func TestSecretsAreIsolated(t *testing.T) {
	t.Parallel()
	iss := testIssuer()

	access, err := iss.IssueAccessToken("user-1", "alice@x.com", "free")
	require.NoError(t, err)
	refresh, _, err := iss.IssueRefreshToken("user-1", "alice@x.com")
	require.NoError(t, err)

	// Each token class only verifies against its own secret.
	_, err = iss.VerifyRefreshToken(access)
	require.ErrorIs(t, err, ErrInvalid)
	_, err = iss.VerifyAccessToken(refresh)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestExpiredTokenIsDistinctFromInvalid(t *testing.T) {
	t.Parallel()
	iss := testIssuer()
	iss.AccessTTL = -time.Minute
	iss.RefreshTTL = -time.Minute

	access, err := iss.IssueAccessToken("user-1", "alice@x.com", "free")
	require.NoError(t, err)
	_, err = iss.VerifyAccessToken(access)
	require.ErrorIs(t, err, ErrExpired)

	refresh, _, err := iss.IssueRefreshToken("user-1", "alice@x.com")
	require.NoError(t, err)
	_, err = iss.VerifyRefreshToken(refresh)
	require.ErrorIs(t, err, ErrExpired)

	_, err = iss.VerifyRefreshToken("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestMissingSecretIsConfigurationError(t *testing.T) {
	t.Parallel()
	iss := &Issuer{}

	_, err := iss.IssueAccessToken("u", "e", "free")
	require.ErrorIs(t, err, ErrNoSecret)
	_, _, err = iss.IssueRefreshToken("u", "e")
	require.ErrorIs(t, err, ErrNoSecret)
	_, err = iss.VerifyRefreshToken("whatever")
	require.ErrorIs(t, err, ErrNoSecret)
}
