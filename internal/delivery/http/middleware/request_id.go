package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
)

// RequestID propagates the X-Request-ID header, generating one when absent.
// The id is stored in the request context and forwarded with every RPC call.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(message.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(message.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(message.WithRequestID(r.Context(), id)))
	})
}
