package dto

import (
	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

// CardRequest is one drawn card as sent by the front-end.
type CardRequest struct {
	CardName    string   `json:"card_name" validate:"required,notempty"`
	Orientation string   `json:"orientation" validate:"required,oneof=upright reversed"`
	Keywords    []string `json:"keywords" validate:"required"`
	Meaning     string   `json:"meaning" validate:"required"`
}

// ReadingRequest is the body of POST /api/reading.
type ReadingRequest struct {
	Question   string        `json:"question" validate:"required,notempty"`
	Cards      []CardRequest `json:"cards" validate:"required,min=1,max=3,dive"`
	ZodiacSign string        `json:"zodiac_sign,omitempty"`
}

// ToDomain converts the request body into the use-case input.
func (r *ReadingRequest) ToDomain() domain.ReadingRequest {
	cards := make([]domain.CardDescriptor, len(r.Cards))
	for i, c := range r.Cards {
		cards[i] = domain.CardDescriptor{
			Name:        c.CardName,
			Orientation: domain.Orientation(c.Orientation),
			Keywords:    c.Keywords,
			Meaning:     c.Meaning,
		}
	}

	return domain.ReadingRequest{
		Question:   r.Question,
		Cards:      cards,
		ZodiacSign: r.ZodiacSign,
	}
}

// ReadingResponse is the body returned by POST /api/reading.
type ReadingResponse struct {
	Reading string `json:"reading"`
}

// ZodiacProfileResponse is one entry of the zodiac catalogue.
type ZodiacProfileResponse struct {
	Sign      string `json:"sign"`
	Element   string `json:"element"`
	Traits    string `json:"traits"`
	DateRange string `json:"date_range"`
}

// ZodiacListResponse is the body of GET /api/zodiac.
type ZodiacListResponse struct {
	Signs []ZodiacProfileResponse `json:"signs"`
}

// FromZodiacProfile converts a domain profile.
func FromZodiacProfile(p domain.ZodiacProfile) ZodiacProfileResponse {
	return ZodiacProfileResponse{
		Sign:      p.Sign,
		Element:   string(p.Element),
		Traits:    p.Traits,
		DateRange: p.DateRange,
	}
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}

// ProbeResponse is the body of the /-/live and /-/ready probes.
type ProbeResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}
