package utils

import (
	"context" // Context for Redis operations
	"time"    // Time durations

	"github.com/google/uuid"       // Lock owner tokens
	"github.com/redis/go-redis/v9" // Redis client
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker hands out short-lived exclusive locks keyed by name
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLocker wraps a Redis client; keys are namespaced by prefix
func NewRedisLocker(rdb *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: prefix}
}

// TryLock acquires key for ttl. ok is false when someone else holds it.
// The returned release func is safe to call after the lock expired.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error) {
	token := uuid.NewString()
	full := l.prefix + key
	ok, err = l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.rdb, []string{full}, token).Err()
	}, true, nil
}
