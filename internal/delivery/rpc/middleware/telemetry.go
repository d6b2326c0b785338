package middleware

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
)

// Tracing starts a server span per command
func Tracing(tracer trace.Tracer) message.Middleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(ctx context.Context, req *message.Request) (any, error) {
			ctx, span := tracer.Start(ctx, "rpc "+req.Command,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("messaging.system", "nats"),
					attribute.String("messaging.destination.name", req.Subject),
					attribute.String("rpc.request_id", req.RequestID),
				),
			)
			defer span.End()

			out, err := next(ctx, req)

			status := response.StatusOf(err)
			span.SetAttributes(attribute.Int("rpc.status", status))
			if status >= 500 {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return out, err
		}
	}
}

// Metrics records a request counter and a duration histogram per command and status
func Metrics(meter metric.Meter) (message.Middleware, error) {
	requests, err := meter.Int64Counter(
		"rpc.server.requests",
		metric.WithDescription("RPC requests handled"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"rpc.server.duration",
		metric.WithDescription("RPC handling time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(ctx context.Context, req *message.Request) (any, error) {
			start := time.Now()

			out, err := next(ctx, req)

			attrs := metric.WithAttributes(
				attribute.String("command", req.Command),
				attribute.String("status", strconv.Itoa(response.StatusOf(err))),
			)
			requests.Add(ctx, 1, attrs)
			duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

			return out, err
		}
	}, nil
}
