package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/ch1pu/agentinvest/internal/auth/store"
	"github.com/ch1pu/agentinvest/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestUser(email string) domain.User {
	return domain.User{
		ID:               idx.New().String(),
		Email:            email,
		PasswordHash:     "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		SubscriptionTier: domain.TierFree,
		Preferences:      map[string]any{},
	}
}

func TestUsers_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("ada@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.False(t, got.EmailVerified)
	assert.Equal(t, domain.TierFree, got.SubscriptionTier)

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Email, byID.Email)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("dup@example.com")))

	err := s.Users().CreateUser(ctx, newTestUser("dup@example.com"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_SoftDeleteFreesEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("gone@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().SoftDeleteUser(ctx, u.ID))

	_, err := s.Users().GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// the address can be taken again after the soft delete
	require.NoError(t, s.Users().CreateUser(ctx, newTestUser("gone@example.com")))
}

func TestUsers_UpdateProfilePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("ada@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	phone := "+61 400 000 000"
	got, err := s.Users().UpdateProfile(ctx, u.ID, domain.ProfileUpdate{
		Phone:       &phone,
		Preferences: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)

	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)
	assert.Equal(t, "Ada", got.FirstName, "untouched fields keep their values")
	assert.Equal(t, "dark", got.Preferences["theme"])
}

func TestUsers_PasswordResetLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("reset@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	expires := time.Now().Add(time.Hour).UTC()
	require.NoError(t, s.Users().SetPasswordResetToken(ctx, u.Email, "reset-tok", expires))

	got, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, got.PasswordResetToken)
	assert.Equal(t, "reset-tok", *got.PasswordResetToken)
	require.NotNil(t, got.PasswordResetExpires)

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.Email, "new-hash"))

	got, err = s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Nil(t, got.PasswordResetToken, "reset state cleared with the new hash")
	assert.Nil(t, got.PasswordResetExpires)
}

func TestUsers_MarkEmailVerified(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("verify@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().SetEmailVerificationToken(ctx, u.ID, "v-tok"))
	require.NoError(t, s.Users().MarkEmailVerified(ctx, u.Email))

	got, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.EmailVerificationToken)
}

func newTestSession(userID, tokenHash string, expiresAt time.Time) domain.Session {
	return domain.Session{
		ID:         idx.New().String(),
		UserID:     userID,
		TokenHash:  tokenHash,
		DeviceInfo: map[string]any{"platform": "test"},
		ExpiresAt:  expiresAt,
	}
}

func TestSessions_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("ses@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	future := time.Now().Add(time.Hour).UTC()
	ses := newTestSession(u.ID, "hash-1", future)
	require.NoError(t, s.Sessions().CreateSession(ctx, ses))

	got, err := s.Sessions().GetSessionByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, ses.ID, got.ID)
	assert.Equal(t, u.ID, got.UserID)

	list, err := s.Sessions().ListUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Sessions().DeleteSessionByTokenHash(ctx, "hash-1"))
	_, err = s.Sessions().GetSessionByTokenHash(ctx, "hash-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// deleting the same row twice stays a no-op
	assert.NoError(t, s.Sessions().DeleteSessionByTokenHash(ctx, "hash-1"))
}

func TestSessions_DeleteUserSessionScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := newTestUser("owner@example.com")
	other := newTestUser("other@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, owner))
	require.NoError(t, s.Users().CreateUser(ctx, other))

	future := time.Now().Add(time.Hour).UTC()
	ses := newTestSession(owner.ID, "hash-owner", future)
	require.NoError(t, s.Sessions().CreateSession(ctx, ses))

	err := s.Sessions().DeleteUserSession(ctx, other.ID, ses.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "another user's session must be out of reach")

	require.NoError(t, s.Sessions().DeleteUserSession(ctx, owner.ID, ses.ID))
}

func TestSessions_ExpiredRowsAreInvisibleAndSwept(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("exp@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()
	require.NoError(t, s.Sessions().CreateSession(ctx, newTestSession(u.ID, "hash-old", past)))
	require.NoError(t, s.Sessions().CreateSession(ctx, newTestSession(u.ID, "hash-new", future)))

	_, err := s.Sessions().GetSessionByTokenHash(ctx, "hash-old")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Sessions().ListUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hash-new", list[0].TokenHash)

	require.NoError(t, s.Sessions().DeleteExpiredSessions(ctx))

	list, err = s.Sessions().ListUserSessions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "sweep only removes expired rows")
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("tx@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_CommitOnSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("tx2@example.com")
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	}))

	_, err := s.Users().GetUserByEmail(ctx, "tx2@example.com")
	assert.NoError(t, err)
}
