package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens limit the blast radius of a leaked
// bearer credential; the long refresh TTL matches the session ledger row
// lifetime.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// AccessClaims are the claims embedded in short-lived access tokens. The
// JSON field names are part of the wire contract with the gateway and must
// not change.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID           string `json:"userId"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscriptionTier"`
}

// RefreshClaims are the claims embedded in long-lived refresh tokens.
// TokenID decorrelates refresh tokens minted for the same user so two logins
// never produce identical token strings.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID  string `json:"userId"`
	Email   string `json:"email"`
	TokenID string `json:"tokenId"`
}

func newRegisteredClaims(issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
