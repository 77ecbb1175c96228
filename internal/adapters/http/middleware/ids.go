// Package middleware provides HTTP middleware components for the Gin server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
)

const (
	// HeaderRequestID identifies one HTTP exchange.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID spans a whole client interaction, unlike the
	// per-request ID.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin key and log attribute for the request ID.
	// dto.GetTraceID falls back to it for error envelopes.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin key and log attribute for the
	// correlation ID.
	ContextKeyCorrelationID = "correlation_id"

	// maxInboundIDLen caps caller-supplied IDs; longer ones are replaced.
	maxInboundIDLen = 128
)

type ctxKey string

// idKind is one identifier the service accepts, echoes and forwards.
type idKind struct {
	header string
	key    string
}

var (
	requestIDKind     = idKind{header: HeaderRequestID, key: ContextKeyRequestID}
	correlationIDKind = idKind{header: HeaderCorrelationID, key: ContextKeyCorrelationID}
)

// handler reuses a well-formed inbound header or mints a UUID v4. The ID is
// echoed on the response, stored on the gin context, attached to the
// context logger and carried on the request context so the upstream client
// can forward it.
func (k idKind) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(k.header)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Set(k.key, id)
		c.Header(k.header, id)

		ctx := context.WithValue(c.Request.Context(), ctxKey(k.key), id)
		c.Request = c.Request.WithContext(logging.With(ctx, k.key, id))

		c.Next()
	}
}

func (k idKind) fromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(ctxKey(k.key)).(string)

	return id
}

// acceptableID rejects empty, oversized or non-printable IDs so they never
// reach logs or upstream headers verbatim.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxInboundIDLen {
		return false
	}

	for i := range len(id) {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}

// RequestID returns the X-Request-ID middleware.
func RequestID() gin.HandlerFunc { return requestIDKind.handler() }

// CorrelationID returns the X-Correlation-ID middleware.
func CorrelationID() gin.HandlerFunc { return correlationIDKind.handler() }

// RequestIDFromContext is used by the upstream client to forward the ID.
func RequestIDFromContext(ctx context.Context) string { return requestIDKind.fromContext(ctx) }

// CorrelationIDFromContext is used by the upstream client to forward the ID.
func CorrelationIDFromContext(ctx context.Context) string {
	return correlationIDKind.fromContext(ctx)
}

// ContextWithRequestID stores a request ID outside of an HTTP request, e.g.
// in tests and benchmarks.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey(ContextKeyRequestID), id)
}

// ContextWithCorrelationID is ContextWithRequestID for the correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey(ContextKeyCorrelationID), id)
}
