package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/redis/go-redis/v9"
)

// Compare-and-delete. Returns 0 when the key is absent, 1 when the value
// matched and was deleted, 2 when a different value is stored.
const consumeScript = `
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
if stored ~= ARGV[1] then
  return 2
end
redis.call("DEL", KEYS[1])
return 1
`

var consumeLua = redis.NewScript(consumeScript)

// Redis implements TokenCache on a single Redis instance.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// NewRedisWithClient wraps an existing client, mainly for tests.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func refreshKey(userID string) string {
	return "refresh_token:" + userID
}

func oneTimeKey(purpose domain.TokenPurpose, email string) string {
	return fmt.Sprintf("%s:%s", purpose, email)
}

func (r *Redis) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, refreshKey(userID), token, ttl).Err()
}

func (r *Redis) TakeRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	res, err := consumeLua.Run(ctx, r.client, []string{refreshKey(userID)}, token).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *Redis) DeleteRefreshToken(ctx context.Context, userID string) error {
	return r.client.Del(ctx, refreshKey(userID)).Err()
}

func (r *Redis) StoreOneTimeToken(ctx context.Context, purpose domain.TokenPurpose, email, token string, ttl time.Duration) error {
	return r.client.Set(ctx, oneTimeKey(purpose, email), token, ttl).Err()
}

func (r *Redis) ConsumeOneTimeToken(ctx context.Context, purpose domain.TokenPurpose, email, token string) (domain.ConsumeStatus, error) {
	res, err := consumeLua.Run(ctx, r.client, []string{oneTimeKey(purpose, email)}, token).Int()
	if err != nil {
		return domain.ConsumeMissing, err
	}

	switch res {
	case 1:
		return domain.Consumed, nil
	case 2:
		return domain.ConsumeMismatch, nil
	default:
		return domain.ConsumeMissing, nil
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
