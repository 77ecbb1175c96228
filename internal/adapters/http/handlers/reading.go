package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/dto"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

// ReadingHandler serves POST /api/reading.
type ReadingHandler struct {
	service ports.ReadingService
}

// NewReadingHandler creates a new reading handler.
func NewReadingHandler(service ports.ReadingService) *ReadingHandler {
	return &ReadingHandler{service: service}
}

// CreateReading binds and validates the body, then runs the reading use
// case. Shape errors are rejected here so the composer never sees them.
func (h *ReadingHandler) CreateReading(c *gin.Context) {
	var req dto.ReadingRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	logging.FromContext(c.Request.Context()).Debug("reading requested",
		slog.Int("cards", len(req.Cards)),
		slog.Bool("zodiac", req.ZodiacSign != ""),
	)

	reading, err := h.service.CreateReading(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReadingResponse{Reading: reading.Text})
}

// RegisterReadingRoutes registers the reading route on the /api group.
func (h *ReadingHandler) RegisterReadingRoutes(rg *gin.RouterGroup) {
	rg.POST("/reading", h.CreateReading)
}
