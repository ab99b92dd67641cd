package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry stores session records as redis keys with a TTL matching the
// token lifetime, so expiry needs no sweeper. Revocation deletes the key; an
// expired or deleted key is indistinguishable from a closed record, which is
// exactly the authentication semantics required.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func key(userID int64, token string) string {
	return fmt.Sprintf("session:%d:%s", userID, tokenDigest(token))
}

func (r *RedisRegistry) Open(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return r.rdb.Set(ctx, key(userID, token), "1", ttl).Err()
}

func (r *RedisRegistry) Close(ctx context.Context, userID int64, token string) error {
	// DEL of a missing key is a no-op, which keeps Close idempotent.
	return r.rdb.Del(ctx, key(userID, token)).Err()
}

func (r *RedisRegistry) IsActive(ctx context.Context, userID int64, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key(userID, token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
