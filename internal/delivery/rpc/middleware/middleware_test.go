package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/domain"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

func newRequest() *message.Request {
	return &message.Request{Subject: "products.find_one", Command: "find_one", RequestID: "req-1"}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.New("test"))(func(ctx context.Context, req *message.Request) (any, error) {
		panic("boom")
	})

	out, err := h(context.Background(), newRequest())

	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogger_LogsCommandAndStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOptions("production", logger.Options{Out: &buf})

	h := Logger(log)(func(ctx context.Context, req *message.Request) (any, error) {
		return nil, domain.ProductNotFound(1)
	})

	_, err := h(context.Background(), newRequest())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, buf.String(), `"command":"find_one"`)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"status":404`)
}

func TestTimeout(t *testing.T) {
	h := Timeout(50 * time.Millisecond)(func(ctx context.Context, req *message.Request) (any, error) {
		deadline, ok := ctx.Deadline()
		return deadline, boolErr(ok)
	})

	out, err := h(context.Background(), newRequest())

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), out.(time.Time), 50*time.Millisecond)
}

func boolErr(ok bool) error {
	if !ok {
		return errors.New("no deadline")
	}
	return nil
}

func TestTracing_RecordsFailures(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	h := Tracing(provider.Tracer("test"))(func(ctx context.Context, req *message.Request) (any, error) {
		return nil, errors.New("db down")
	})

	_, err := h(context.Background(), newRequest())
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "rpc find_one", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_NotFoundIsNotAnError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	h := Tracing(provider.Tracer("test"))(func(ctx context.Context, req *message.Request) (any, error) {
		return nil, domain.ProductNotFound(1)
	})

	_, _ = h(context.Background(), newRequest())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestMetrics_CountsByCommandAndStatus(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	mw, err := Metrics(provider.Meter("test"))
	require.NoError(t, err)

	h := mw(func(ctx context.Context, req *message.Request) (any, error) {
		return "ok", nil
	})
	for i := 0; i < 3; i++ {
		_, err := h(context.Background(), newRequest())
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "rpc.server.requests" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
				command, _ := dp.Attributes.Value("command")
				assert.Equal(t, "find_one", command.AsString())
			}
		}
	}
	assert.Equal(t, int64(3), total)
}
