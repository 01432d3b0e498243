package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only if it is still held by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock takes the reconcile lock for owner. It reports false when another
// owner holds it.
func (c *Cache) TryLock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, ReconcileLockKey(), owner, ttl).Result()
	if err != nil {
		c.logger.Error("failed to acquire reconcile lock", zap.Error(err))
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	if !ok {
		holder, _ := c.client.Get(ctx, ReconcileLockKey()).Result()
		c.logger.Info("reconcile lock is held", zap.String("holder", holder))
	}

	return ok, nil
}

func (c *Cache) Unlock(ctx context.Context, owner string) error {
	released, err := releaseScript.Run(ctx, c.client, []string{ReconcileLockKey()}, owner).Int()
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if released == 0 {
		c.logger.Warn("reconcile lock expired before release", zap.String("owner", owner))
	}
	return nil
}
