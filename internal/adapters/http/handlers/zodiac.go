package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/http/dto"
	"github.com/gzizouseif24/tarot-reader/internal/domain"
)

// ZodiacHandler exposes the static zodiac catalogue so clients can offer the
// same signs the prompt understands.
type ZodiacHandler struct{}

// NewZodiacHandler creates a new zodiac handler.
func NewZodiacHandler() *ZodiacHandler {
	return &ZodiacHandler{}
}

// ListSigns handles GET /api/zodiac.
func (h *ZodiacHandler) ListSigns(c *gin.Context) {
	profiles := domain.ZodiacProfiles()

	resp := dto.ZodiacListResponse{Signs: make([]dto.ZodiacProfileResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Signs = append(resp.Signs, dto.FromZodiacProfile(p))
	}

	c.JSON(http.StatusOK, resp)
}

// GetSign handles GET /api/zodiac/:sign. Lookup ignores case.
func (h *ZodiacHandler) GetSign(c *gin.Context) {
	sign := c.Param("sign")

	profile, ok := domain.LookupZodiac(sign)
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("zodiac sign", sign))
		return
	}

	c.JSON(http.StatusOK, dto.FromZodiacProfile(profile))
}

// RegisterZodiacRoutes registers the catalogue routes on the /api group.
func (h *ZodiacHandler) RegisterZodiacRoutes(rg *gin.RouterGroup) {
	rg.GET("/zodiac", h.ListSigns)
	rg.GET("/zodiac/:sign", h.GetSign)
}
