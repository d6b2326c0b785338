package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// Logger returns a middleware that logs every command
func Logger(log *logger.Logger) message.Middleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(ctx context.Context, req *message.Request) (any, error) {
			start := time.Now()

			out, err := next(ctx, req)

			status := response.StatusOf(err)
			entry := log.WithFields(map[string]interface{}{
				"command":     req.Command,
				"request_id":  req.RequestID,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if status >= http.StatusInternalServerError {
				entry.Error("RPC request failed", err)
			} else {
				entry.Info("RPC request")
			}

			return out, err
		}
	}
}
