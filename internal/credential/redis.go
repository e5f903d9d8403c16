package credential

import (
	"context"
	"time"

	"github.com/prohmpiriya/ecom-storefront/pkg/redis"
)

// RedisBackend stores one session's entries under prefix, e.g.
// "storefront:session:<sid>:auth_token". Every write refreshes the TTL.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend scopes a backend to a single session key prefix
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisBackend) key(k string) string {
	return r.prefix + ":" + k
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return r.client.GetString(ctx, r.key(key))
}

func (r *RedisBackend) Set(ctx context.Context, values map[string]string) error {
	prefixed := make(map[string]string, len(values))
	for k, v := range values {
		prefixed[r.key(k)] = v
	}
	return r.client.SetMany(ctx, prefixed, r.ttl)
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	return r.client.Del(ctx, prefixed...).Err()
}
