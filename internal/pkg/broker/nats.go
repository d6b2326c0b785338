package broker

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// Connect opens a NATS connection that reconnects indefinitely and logs its state changes
func Connect(cfg *config.Config, name string, log *logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name(name),
		nats.Timeout(cfg.NATS.ConnectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("Disconnected from NATS: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("Reconnected to NATS at %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("Connected to NATS at %s", cfg.NATS.URL)
	return nc, nil
}

// Status reports an error unless nc is connected
func Status(nc *nats.Conn) error {
	if nc.IsConnected() {
		return nil
	}
	return fmt.Errorf("nats connection is %s", nc.Status())
}
