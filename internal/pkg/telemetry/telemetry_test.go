package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestTelemetry_MetricsHandlerExposesCounters(t *testing.T) {
	ctx := context.Background()
	telem, err := New(ctx, Options{ServiceName: "products-ms", Environment: "test"})
	require.NoError(t, err)
	defer func() {
		_ = telem.Shutdown(ctx)
	}()

	counter, err := telem.Meter().Int64Counter("rpc.server.requests")
	require.NoError(t, err)
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("command", "create")))

	w := httptest.NewRecorder()
	telem.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rpc_server_requests")
	assert.Contains(t, w.Body.String(), `command="create"`)
}

func TestTelemetry_NoopShutdown(t *testing.T) {
	telem := NewNoop()

	_, span := telem.Tracer().Start(context.Background(), "noop")
	span.End()

	assert.NoError(t, telem.Shutdown(context.Background()))
}
