package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Pesokrava/products-ms/internal/delivery/http/response"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	rpcresponse "github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// Recovery turns a handler panic into a 500 INTERNAL envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.WithFields(map[string]interface{}{
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": message.RequestIDFromContext(r.Context()),
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered in HTTP handler", fmt.Errorf("panic: %v", rec))

				response.Fail(w, http.StatusInternalServerError, rpcresponse.CodeInternal, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
