package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlacklist shares revocations across processes. Keys carry the entry
// TTL, so expiry is handled by Redis itself.
type RedisBlacklist struct {
	client *redis.Client
	prefix string
}

// NewRedisBlacklist creates a Redis-backed blacklist. Prefix may be empty.
func NewRedisBlacklist(client *redis.Client, prefix string) *RedisBlacklist {
	if prefix == "" {
		prefix = "blacklist:access:"
	}
	return &RedisBlacklist{client: client, prefix: prefix}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultBlacklistTTL
	}
	return b.client.Set(ctx, b.prefix+token, "1", ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.prefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
