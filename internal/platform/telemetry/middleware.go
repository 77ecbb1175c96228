package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gzizouseif24/tarot-reader/telemetry"

// HeaderTraceID carries the active trace ID back to the caller.
const HeaderTraceID = "X-Trace-ID"

// Tracer returns the service tracer. Spans are dropped until New installs
// an exporting provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// serverInstruments are the OTel HTTP server instruments. They complement
// the prometheus reading metrics with per-route latency.
type serverInstruments struct {
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newServerInstruments(meter metric.Meter) (*serverInstruments, error) {
	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.05, 0.25, 1, 5, 15, 30, 60, 90),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("HTTP requests being served"),
	)
	if err != nil {
		return nil, err
	}

	return &serverInstruments{duration: duration, inFlight: inFlight}, nil
}

// Middleware records per-route latency and echoes the trace ID in
// X-Trace-ID. It must run after TracingMiddleware so the span exists.
// Unmatched routes are recorded under "unmatched" to bound cardinality.
func Middleware() gin.HandlerFunc {
	inst, err := newServerInstruments(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if inst == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
		}
		base := metric.WithAttributes(attrs...)

		start := time.Now()
		inst.inFlight.Add(ctx, 1, base)

		c.Next()

		inst.inFlight.Add(ctx, -1, base)
		inst.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			append(attrs, attribute.Int("http.response.status_code", c.Writer.Status()))...,
		))
	}
}

// TracingMiddleware starts a server span per request.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
