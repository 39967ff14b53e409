package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker is a minimal distributed lock used to serialize per-user critical
// sections such as the charge path.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker builds a Locker over SET NX with a TTL so a crashed holder
// cannot wedge the lock forever.
func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, "1", ttl).Result()
}

func (l *redisLocker) Release(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, key).Err()
}
