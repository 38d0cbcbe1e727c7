package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
)

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestTakeRefreshToken_MatchDeletes(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreRefreshToken(ctx, "user-1", "tok-a", time.Hour))

	ok, err := c.TakeRefreshToken(ctx, "user-1", "tok-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// slot is gone; the same token cannot be replayed
	ok, err = c.TakeRefreshToken(ctx, "user-1", "tok-a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, mr.Exists("refresh_token:user-1"))
}

func TestTakeRefreshToken_MismatchKeepsSlot(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreRefreshToken(ctx, "user-1", "tok-a", time.Hour))

	ok, err := c.TakeRefreshToken(ctx, "user-1", "tok-b")
	require.NoError(t, err)
	assert.False(t, ok)

	// stale presentation must not evict the active token
	assert.True(t, mr.Exists("refresh_token:user-1"))

	ok, err = c.TakeRefreshToken(ctx, "user-1", "tok-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreRefreshToken_SecondLoginOverwrites(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreRefreshToken(ctx, "user-1", "tok-a", time.Hour))
	require.NoError(t, c.StoreRefreshToken(ctx, "user-1", "tok-b", time.Hour))

	ok, err := c.TakeRefreshToken(ctx, "user-1", "tok-a")
	require.NoError(t, err)
	assert.False(t, ok, "first login's token should be displaced")

	ok, err = c.TakeRefreshToken(ctx, "user-1", "tok-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsumeOneTimeToken(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreOneTimeToken(ctx, domain.PurposeVerifyEmail, "a@example.com", "v-tok", time.Hour))

	status, err := c.ConsumeOneTimeToken(ctx, domain.PurposeVerifyEmail, "a@example.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, domain.ConsumeMismatch, status)

	status, err = c.ConsumeOneTimeToken(ctx, domain.PurposeVerifyEmail, "a@example.com", "v-tok")
	require.NoError(t, err)
	assert.Equal(t, domain.Consumed, status)

	status, err = c.ConsumeOneTimeToken(ctx, domain.PurposeVerifyEmail, "a@example.com", "v-tok")
	require.NoError(t, err)
	assert.Equal(t, domain.ConsumeMissing, status)
}

func TestConsumeOneTimeToken_PurposesAreIsolated(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreOneTimeToken(ctx, domain.PurposeVerifyEmail, "a@example.com", "tok", time.Hour))

	status, err := c.ConsumeOneTimeToken(ctx, domain.PurposeResetPassword, "a@example.com", "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.ConsumeMissing, status)
}

func TestRefreshToken_ExpiresWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreRefreshToken(ctx, "user-1", "tok-a", time.Minute))

	mr.FastForward(2 * time.Minute)

	ok, err := c.TakeRefreshToken(ctx, "user-1", "tok-a")
	require.NoError(t, err)
	assert.False(t, ok)
}
