package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

var _ repository.RunLock = (*redisRunLock)(nil)

const lockKeyPrefix = "setforge:run-lock:"

// releaseScript deletes the key only when it still carries the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type redisRunLock struct {
	client goredis.Cmdable
}

// NewRedisRunLock creates a Redis-backed run lock using SET NX with a TTL.
func NewRedisRunLock(client goredis.Cmdable) repository.RunLock {
	return &redisRunLock{client: client}
}

func (l *redisRunLock) Acquire(ctx context.Context, kind domain.RunKind, owner string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+string(kind), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire run lock: %w", err)
	}
	return ok, nil
}

func (l *redisRunLock) Release(ctx context.Context, kind domain.RunKind, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{lockKeyPrefix + string(kind)}, owner).Err(); err != nil {
		return fmt.Errorf("redis: release run lock: %w", err)
	}
	return nil
}
