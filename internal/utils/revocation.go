package utils

import (
	"context" // Context for Redis operations
	"time"    // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

const revokedPrefix = "auth:revoked:" // Key prefix for revoked token ids

// RevocationList remembers logged-out token ids until they would have expired anyway
type RevocationList struct {
	rdb *redis.Client
}

// NewRevocationList wraps a Redis client
func NewRevocationList(rdb *redis.Client) *RevocationList {
	return &RevocationList{rdb: rdb}
}

// Revoke marks jti revoked until expiresAt. Already-expired tokens are ignored.
func (r *RevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether jti has been revoked
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
