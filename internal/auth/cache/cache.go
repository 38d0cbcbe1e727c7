// Package cache holds the fast-path token state: the active refresh token per
// user and outstanding one-shot email-verification and password-reset tokens.
// The relational ledger stays authoritative for sessions; the cache is the
// cheap exact-match check in front of it.
package cache

import (
	"context"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
)

// TokenCache is the cache-side contract used by the auth services.
type TokenCache interface {
	// StoreRefreshToken records token as the active refresh token for the
	// user. One slot per user; a second login overwrites the first, so only
	// the latest session can refresh.
	StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error

	// TakeRefreshToken atomically compares the presented token against the
	// stored one and deletes it on match. Returns true only when the token
	// was present and matched; this is the rotation serialization point,
	// so concurrent refreshes with the same token yield exactly one winner.
	TakeRefreshToken(ctx context.Context, userID, token string) (bool, error)

	// DeleteRefreshToken clears the user's refresh slot. Deleting an absent
	// slot is a no-op.
	DeleteRefreshToken(ctx context.Context, userID string) error

	// StoreOneTimeToken records an outstanding one-shot token (email
	// verification or password reset) keyed by email.
	StoreOneTimeToken(ctx context.Context, purpose domain.TokenPurpose, email, token string, ttl time.Duration) error

	// ConsumeOneTimeToken atomically checks and deletes a one-shot token.
	// A mismatched token leaves the stored value in place.
	ConsumeOneTimeToken(ctx context.Context, purpose domain.TokenPurpose, email, token string) (domain.ConsumeStatus, error)

	// Ping verifies the cache connection is still alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
