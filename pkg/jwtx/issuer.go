// Package jwtx mints and verifies the two token classes the auth service
// issues: HS256-signed access tokens carrying identity and tier claims, and
// HS256-signed refresh tokens carrying a per-issuance token id.
//
// Access and refresh tokens are signed with distinct secrets as a deliberate
// isolation boundary: compromise of one signing key must not compromise the
// other token class.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer signs and verifies access/refresh tokens.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// IssueAccessToken signs {userId, email, subscriptionTier} with the access
// secret and the configured access TTL.
func (i *Issuer) IssueAccessToken(userID, email, subscriptionTier string) (string, error) {
	if len(i.AccessSecret) == 0 {
		return "", ErrNoSecret
	}

	claims := AccessClaims{
		RegisteredClaims: newRegisteredClaims(i.Issuer, i.accessTTL(), time.Now()),
		UserID:           userID,
		Email:            email,
		SubscriptionTier: subscriptionTier,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.AccessSecret)
}

// IssueRefreshToken signs {userId, email, tokenId} with the refresh secret
// and the configured refresh TTL. The fresh tokenId is returned alongside
// the signed token.
func (i *Issuer) IssueRefreshToken(userID, email string) (token, tokenID string, err error) {
	if len(i.RefreshSecret) == 0 {
		return "", "", ErrNoSecret
	}

	tokenID = uuid.NewString()
	claims := RefreshClaims{
		RegisteredClaims: newRegisteredClaims(i.Issuer, i.refreshTTL(), time.Now()),
		UserID:           userID,
		Email:            email,
		TokenID:          tokenID,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	return token, tokenID, nil
}

// VerifyAccessToken validates signature and expiry of an access token and
// returns its claims. Expiry and signature failures surface as ErrExpired
// and ErrInvalid respectively.
func (i *Issuer) VerifyAccessToken(token string) (AccessClaims, error) {
	if len(i.AccessSecret) == 0 {
		return AccessClaims{}, ErrNoSecret
	}
	var claims AccessClaims
	if err := i.parse(token, &claims, i.AccessSecret); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// VerifyRefreshToken validates signature and expiry of a refresh token and
// returns its claims.
func (i *Issuer) VerifyRefreshToken(token string) (RefreshClaims, error) {
	if len(i.RefreshSecret) == 0 {
		return RefreshClaims{}, ErrNoSecret
	}
	var claims RefreshClaims
	if err := i.parse(token, &claims, i.RefreshSecret); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (i *Issuer) parse(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case err != nil:
		return ErrInvalid
	case !parsed.Valid:
		return ErrInvalid
	}
	return nil
}

// A zero TTL means "use the default"; negative values are honored so callers
// can mint already-expired tokens.
func (i *Issuer) accessTTL() time.Duration {
	if i.AccessTTL != 0 {
		return i.AccessTTL
	}
	return DefaultAccessTokenTTL
}

func (i *Issuer) refreshTTL() time.Duration {
	if i.RefreshTTL != 0 {
		return i.RefreshTTL
	}
	return DefaultRefreshTokenTTL
}
