package middleware

import (
	"context"
	"fmt"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// Recovery returns a middleware that turns handler panics into internal errors
func Recovery(log *logger.Logger) message.Middleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(ctx context.Context, req *message.Request) (out any, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(map[string]interface{}{
						"panic":      rec,
						"command":    req.Command,
						"request_id": req.RequestID,
					}).Warn("Panic recovered")

					out = nil
					err = fmt.Errorf("panic in %s handler: %v", req.Command, rec)
				}
			}()

			return next(ctx, req)
		}
	}
}
