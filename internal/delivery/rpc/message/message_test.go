package message

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *Request) (any, error) {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}

	h := Chain(func(ctx context.Context, req *Request) (any, error) {
		calls = append(calls, "handler")
		return req.Command, nil
	}, tag("outer"), tag("inner"))

	out, err := h(context.Background(), &Request{Command: "find_one"})

	require.NoError(t, err)
	assert.Equal(t, "find_one", out)
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}
