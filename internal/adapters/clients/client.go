package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/middleware"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
)

const (
	instrumentationName = "github.com/gzizouseif24/tarot-reader/internal/adapters/clients"

	// httpStatusCategoryDivisor divides status code to get category (2xx, 4xx, 5xx).
	httpStatusCategoryDivisor = 100

	defaultTimeout = 60 * time.Second
)

// Config configures an HTTP client instance.
type Config struct {
	// ServiceName identifies the upstream for logging, tracing and metrics.
	ServiceName string

	// Timeout bounds the single attempt, including reading the body headers.
	Timeout time.Duration

	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// RoundTripper replaces the pooled transport. Tests use it to record
	// or fake upstream calls.
	RoundTripper http.RoundTripper

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// Client is an instrumented HTTP client for the completion upstream.
// Every call is a single attempt; there is no retry. It provides:
//   - Circuit breaker protection
//   - OpenTelemetry tracing and metrics
//   - Request/correlation ID propagation
//   - Structured logging
type Client struct {
	http        *http.Client
	serviceName string
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a new instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(cfg),
		},
		serviceName:     cfg.ServiceName,
		logger:          logger,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func newTransport(cfg *Config) http.RoundTripper {
	if cfg.RoundTripper != nil {
		return cfg.RoundTripper
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Transport.MaxIdleConns > 0 {
		t.MaxIdleConns = cfg.Transport.MaxIdleConns
	}
	if cfg.Transport.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.Transport.MaxIdleConnsPerHost
	}
	if cfg.Transport.IdleConnTimeout > 0 {
		t.IdleConnTimeout = cfg.Transport.IdleConnTimeout
	}

	return t
}

// Do executes one HTTP attempt with circuit breaker, tracing and logging.
//
// Non-2xx responses are returned as-is so the caller can decode the error
// body; 5xx and 429 still count as failures for the circuit breaker.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, time.Since(startTime), "circuit_open")
		logger.Warn("request blocked by circuit breaker",
			slog.Duration("retry_in", c.cb.OpenFor()),
		)
		return nil, c.circuitError()
	}

	injectIDs(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logger.Log(ctx, logging.LevelTrace, "sending upstream request")

	resp, err := c.http.Do(req.WithContext(ctx))
	duration := time.Since(startTime)

	if err != nil {
		c.cb.RecordFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		result := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result = "context_canceled"
		}
		c.recordMetrics(ctx, req.Method, 0, duration, result)

		logger.Error("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

		return nil, fmt.Errorf("%s request: %w", c.serviceName, err)
	}

	if isUpstreamFailure(resp.StatusCode) {
		c.cb.RecordFailure()
	} else {
		c.cb.RecordSuccess()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		logger.Warn("upstream returned error status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration),
		)
	} else {
		logger.Debug("request completed",
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration),
		)
	}

	statusCategory := fmt.Sprintf("%dxx", resp.StatusCode/httpStatusCategoryDivisor)
	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration, statusCategory)

	return resp, nil
}

// Doer adapts the client to SDKs that take a single-argument Do and carry
// the context on the request.
func (c *Client) Doer() *RequestDoer {
	return &RequestDoer{client: c}
}

// RequestDoer implements the Do(*http.Request) shape used by SDK clients.
type RequestDoer struct {
	client *Client
}

// Do forwards to Client.Do using the request's own context.
func (d *RequestDoer) Do(req *http.Request) (*http.Response, error) {
	return d.client.Do(req.Context(), req)
}

// StandardClient wraps the client in an *http.Client for SDKs that only
// accept that type. Requests are cloned so the caller's headers are not
// mutated by ID injection.
func (c *Client) StandardClient() *http.Client {
	return &http.Client{Transport: roundTripper{client: c}}
}

type roundTripper struct {
	client *Client
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.client.Do(req.Context(), req.Clone(req.Context()))
}

// CircuitError returns an error wrapping ErrCircuitOpen while the circuit is
// open, and nil otherwise. Readiness checks use it.
func (c *Client) CircuitError() error {
	if c.cb.State() != StateOpen {
		return nil
	}

	return c.circuitError()
}

func (c *Client) circuitError() error {
	if wait := c.cb.OpenFor(); wait > 0 {
		return fmt.Errorf("%w, retry in %s", ErrCircuitOpen, wait.Round(time.Second))
	}

	return ErrCircuitOpen
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// injectIDs propagates request and correlation IDs to the upstream.
func injectIDs(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}
}

func isUpstreamFailure(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
