package broker

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

func TestStatus_Disconnected(t *testing.T) {
	assert.Error(t, Status(&nats.Conn{}))
}

func TestConnect_NoServer(t *testing.T) {
	cfg := &config.Config{NATS: config.NATSConfig{URL: "nats://127.0.0.1:1", ConnectTimeout: 100 * time.Millisecond}}

	nc, err := Connect(cfg, "test", logger.New("test"))
	if err != nil {
		return
	}
	defer nc.Close()

	// With RetryOnFailedConnect the connection is handed back while still reconnecting.
	assert.Error(t, Status(nc))
}
