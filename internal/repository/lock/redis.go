package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// ErrNotAcquired is returned when ctx is done before the lock could be taken
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes work per product id across service replicas
type RedisLocker struct {
	client     redis.Cmdable
	ttl        time.Duration
	retryDelay time.Duration
	logger     *logger.Logger
}

// NewRedisLocker creates a locker whose locks expire after ttl
func NewRedisLocker(client redis.Cmdable, ttl time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{
		client:     client,
		ttl:        ttl,
		retryDelay: 25 * time.Millisecond,
		logger:     log,
	}
}

func (l *RedisLocker) productKey(id int64) string {
	return fmt.Sprintf("products:%d:lock", id)
}

// LockProduct blocks until the product lock is held or ctx is done.
// The returned release function is safe to call once the lock has expired.
func (l *RedisLocker) LockProduct(ctx context.Context, id int64) (func(), error) {
	key := l.productKey(id)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(l.retryDelay):
		}
	}

	return func() { l.release(key, token) }, nil
}

// release drops the lock if it still holds token. It runs on its own context
// since the caller's may already be done.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.WithFields(map[string]interface{}{
			"key": key,
			"ttl": l.ttl.String(),
		}).Error("Failed to release product lock; it is held until it expires", err)
	}
}

// NoopLocker is used when per-product serialization is disabled
type NoopLocker struct{}

// LockProduct returns immediately
func (NoopLocker) LockProduct(context.Context, int64) (func(), error) {
	return func() {}, nil
}
