package lock

import (
	"bytes"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

func TestRedisLocker_ReleaseFailureIsLogged(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	var buf bytes.Buffer
	log := logger.NewWithOptions("production", logger.Options{Out: &buf})
	locker := NewRedisLocker(client, 5*time.Second, log)

	locker.release(locker.productKey(42), "token")

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "Failed to release product lock")
	assert.Contains(t, out, `"key":"products:42:lock"`)
}
