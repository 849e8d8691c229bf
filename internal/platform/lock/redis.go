package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisLockRetryInterval = 50 * time.Millisecond

// RedisLocker holds per-order locks via SET NX with a TTL, for deployments
// running more than one gateway replica. The TTL bounds how long a crashed
// holder can block redeliveries of the same order.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, log: log}
}

func (l *RedisLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	key := fmt.Sprintf("dfx:order_lock:%d", orderID)
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire order lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-time.After(redisLockRetryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	release := func() {
		// only the owner may delete; the lock may have expired and been re-acquired
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		val, err := l.client.Get(ctx, key).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			l.log.Warnw("order lock release failed", "key", key, "err", err)
			return
		}
		if val == token {
			if err := l.client.Del(ctx, key).Err(); err != nil {
				l.log.Warnw("order lock delete failed", "key", key, "err", err)
			}
		}
	}
	return release, nil
}
