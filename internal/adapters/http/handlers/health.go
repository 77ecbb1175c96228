// Package handlers provides the HTTP handlers of the tarot API.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/dto"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

// BuildInfo identifies the running binary. The version fields are set
// with -ldflags at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills GoVersion from the running toolchain.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

const serviceBanner = "Celestial Tarot API"

// HealthHandler serves the public status endpoints used by the front-end
// and the operational probes under /-/.
type HealthHandler struct {
	registry    ports.HealthRegistry
	credentials ports.CredentialStatus
	build       BuildInfo
}

// NewHealthHandler wires the handler. credentials may be nil, in which case
// /health reports the key as missing.
func NewHealthHandler(registry ports.HealthRegistry, credentials ports.CredentialStatus, build BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, credentials: credentials, build: build}
}

// Routes mounts / and /health at the root and live, ready, build and
// metrics under /-/.
func (h *HealthHandler) Routes(engine *gin.Engine) {
	engine.GET("/", h.Root)
	engine.GET("/health", h.Health)

	probes := engine.Group("/-")
	probes.GET("/live", h.Liveness)
	probes.GET("/ready", h.Readiness)
	probes.GET("/build", h.Build)
	probes.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Root handles GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RootResponse{
		Message: serviceBanner,
		Status:  "online",
		Version: h.build.Version,
	})
}

// Health handles GET /health. It always answers 200; api_key_configured
// says whether readings can be generated. The key itself is never exposed.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:           "healthy",
		APIKeyConfigured: h.credentials != nil && h.credentials.APIKeyConfigured(),
	})
}

// Liveness handles GET /-/live and checks nothing.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProbeResponse{Status: "ok"})
}

// Readiness handles GET /-/ready. A missing model credential or an open
// circuit makes it 503 while /health stays 200.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.ProbeResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// Build handles GET /-/build.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
