package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/dto"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
	"github.com/gzizouseif24/tarot-reader/internal/platform/metrics"
)

// Recovery returns middleware that turns a panic into a 500 with the
// standard error envelope. The stack goes to the log, never to the client.
// Apply it first so it covers every later handler. Each recovered panic is
// counted in tarot_http_panics_recovered_total.
func Recovery() gin.HandlerFunc {
	return RecoveryWithHook(countPanic)
}

func countPanic(c *gin.Context, _ any, _ []byte) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}

	metrics.PanicsRecoveredTotal.WithLabelValues(route).Inc()
}

// RecoveryWithHook is Recovery with a callback that receives the panic value
// and stack instead of the panic counter.
func RecoveryWithHook(hook func(c *gin.Context, err any, stack []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			if hook != nil {
				hook(c, r, stack)
			}

			traceID := dto.GetTraceID(c)

			logging.FromContext(c.Request.Context()).Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(stack)),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			errResp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred")
			errResp.TraceID = traceID

			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
			} else {
				c.Abort()
			}
		}()

		c.Next()
	}
}
