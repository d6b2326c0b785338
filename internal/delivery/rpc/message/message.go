package message

import "context"

// HeaderRequestID carries the request id on NATS messages and HTTP requests
const HeaderRequestID = "X-Request-ID"

// Request is a single command delivered to the microservice
type Request struct {
	Subject   string
	Command   string
	RequestID string
	Payload   []byte
}

// HandlerFunc serves one command. The returned value becomes the reply data.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// Middleware wraps a HandlerFunc
type Middleware func(next HandlerFunc) HandlerFunc

// Chain wraps h so that mws[0] is the outermost middleware
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type requestIDKey struct{}

// WithRequestID stores id in ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
