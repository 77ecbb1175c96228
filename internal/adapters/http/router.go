package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/dto"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/handlers"
	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/middleware"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api requests when no timeout is configured.
// It leaves room for the upstream's own 60s attempt.
const DefaultRequestTimeout = 75 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	AppConfig  *config.AppConfig
	CORSConfig *config.CORSConfig

	HealthHandler  *handlers.HealthHandler
	ReadingHandler *handlers.ReadingHandler
	ZodiacHandler  *handlers.ZodiacHandler

	// Timeout is the deadline applied to /api routes.
	Timeout time.Duration

	// MaxRequestSize caps request bodies in bytes; zero disables the cap.
	MaxRequestSize int64
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Body size limit - oversized bodies fail with 413 when read
//  3. Request ID and Correlation ID
//  4. OpenTelemetry - server span, then HTTP metrics
//  5. Logging - request logging (skips /-/ endpoints)
//  6. CORS - answers preflight before routing
//
// Route groups:
//   - / and /health: public status
//   - /-/: probes, build info and prometheus metrics
//   - /api: readings and the zodiac catalogue, under a request deadline
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := "tarot-reader"
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		serviceName = cfg.AppConfig.Name
	}

	engine.Use(
		middleware.Recovery(),
		maxBodySize(cfg.MaxRequestSize),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(serviceName),
		telemetry.Middleware(),
		middleware.Logging(),
	)

	if cfg.CORSConfig != nil {
		engine.Use(cors.New(corsConfig(cfg.CORSConfig)))
	}

	engine.NoRoute(func(c *gin.Context) {
		resp := dto.NewErrorResponse(dto.ErrorCodeNotFound, "route not found")
		c.JSON(http.StatusNotFound, resp.WithTraceID(dto.GetTraceID(c)))
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Routes(engine)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	api := engine.Group("/api")
	api.Use(middleware.Timeout(timeout))

	if cfg.ReadingHandler != nil {
		cfg.ReadingHandler.RegisterReadingRoutes(api)
	}

	if cfg.ZodiacHandler != nil {
		cfg.ZodiacHandler.RegisterZodiacRoutes(api)
	}
}

// corsConfig allows every method and the headers the front-end sends from
// the configured origins. A "*" entry opens all origins.
func corsConfig(cfg *config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderRequestID, middleware.HeaderCorrelationID,
		},
		ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderCorrelationID, telemetry.HeaderTraceID},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	if slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}

	return c
}

// maxBodySize caps request bodies. Reading past the limit yields
// *http.MaxBytesError, which the error mapper turns into a 413.
func maxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
