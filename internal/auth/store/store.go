package store

import (
	"context"
	"errors"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (postgres,
// sqlite) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (e.g. refresh rotation in the ledger).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the credential-store repository. Every read excludes soft-deleted
// rows; deleted_at gates all lookups.
type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when a non-deleted user with the same email
	// exists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a non-deleted user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a non-deleted user by email (case-sensitive,
	// as stored).
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateProfile applies a partial profile mutation and returns the
	// updated user.
	UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (domain.User, error)

	// UpdateLastLogin stamps last_login with the current time.
	UpdateLastLogin(ctx context.Context, userID string) error

	// SetEmailVerificationToken records the outstanding verification token
	// on the user row.
	SetEmailVerificationToken(ctx context.Context, userID string, token string) error

	// MarkEmailVerified flips email_verified and clears the stored
	// verification token.
	MarkEmailVerified(ctx context.Context, email string) error

	// SetPasswordResetToken records the outstanding reset token and its
	// expiry on the user row.
	SetPasswordResetToken(ctx context.Context, email string, token string, expiresAt time.Time) error

	// UpdatePasswordHash stores a new password hash and clears any reset
	// token state.
	UpdatePasswordHash(ctx context.Context, email string, newHash string) error

	// UpdateSubscription sets the subscription tier and optional expiry.
	UpdateSubscription(ctx context.Context, userID string, tier string, expiresAt *time.Time) error

	// SoftDeleteUser stamps deleted_at; the row is never physically removed.
	SoftDeleteUser(ctx context.Context, userID string) error
}

// Sessions is the session-ledger repository.
type Sessions interface {
	// CreateSession stores a new ledger row.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns a non-expired session by the refresh
	// token fingerprint.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// ListUserSessions returns all non-expired sessions for a user, newest
	// first.
	ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error)

	// DeleteSessionByTokenHash removes the row matching the fingerprint.
	// Deleting an absent row is a no-op.
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteUserSession removes one session scoped to its owner. Returns
	// ErrNotFound when the session does not exist or belongs to another
	// user.
	DeleteUserSession(ctx context.Context, userID, sessionID string) error

	// DeleteUserSessions bulk-revokes every session for a user (password
	// reset, account deletion).
	DeleteUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions is the housekeeping sweep.
	DeleteExpiredSessions(ctx context.Context) error
}
