package lock

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
)

// OrderLocker serializes webhook processing per order id. Webhook providers
// redeliver on timeout, so two deliveries for the same order can race between
// the idempotency read and the status write; the lock closes that window.
// Requests for different orders proceed independently.
type OrderLocker interface {
	// Lock blocks until the lock for orderID is held or ctx is done.
	// The returned release func must be called exactly once.
	Lock(ctx context.Context, orderID int64) (release func(), err error)
}

func newLocker(cfg *cfgpkg.Config, log *zap.SugaredLogger) OrderLocker {
	if cfg.Redis.Addr == "" {
		log.Infow("order lock: using in-process locker")
		return NewMemoryLocker()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Infow("order lock: using redis locker", "addr", cfg.Redis.Addr)
	return NewRedisLocker(client, cfg.Redis.LockTTL, log)
}

var Module = fx.Options(
	fx.Provide(newLocker),
)
