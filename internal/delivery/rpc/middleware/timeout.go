package middleware

import (
	"context"
	"time"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
)

// Timeout bounds the context every handler runs with
func Timeout(d time.Duration) message.Middleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(ctx context.Context, req *message.Request) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
