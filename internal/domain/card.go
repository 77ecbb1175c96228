package domain

import "strings"

// MaxCards is the largest spread a reading accepts.
const MaxCards = 3

// Orientation is the way a drawn card faces.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// Valid reports whether o is one of the known orientations.
func (o Orientation) Valid() bool {
	return o == Upright || o == Reversed
}

// CardDescriptor describes one drawn card as supplied by the caller.
// This is a domain entity - it has no knowledge of the wire format.
type CardDescriptor struct {
	// Name is the card's display name, e.g. "The Lovers".
	Name string

	// Orientation is upright or reversed.
	Orientation Orientation

	// Keywords are rendered in order, comma separated.
	Keywords []string

	// Meaning is the orientation-specific interpretation of the card.
	Meaning string
}

// ReadingRequest is everything needed to produce one reading.
type ReadingRequest struct {
	Question   string
	Cards      []CardDescriptor
	ZodiacSign string
}

// Validate checks the request shape. The first problem found is returned.
func (r ReadingRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return NewValidationError("question", "is required")
	}

	if err := validateCardCount(len(r.Cards)); err != nil {
		return err
	}

	for i, c := range r.Cards {
		if strings.TrimSpace(c.Name) == "" {
			return NewValidationErrorWithValue("cards", "card name is required", i)
		}

		if !c.Orientation.Valid() {
			return NewValidationErrorWithValue("cards", "orientation must be upright or reversed", string(c.Orientation))
		}
	}

	return nil
}

// Reading is the generated interpretation.
type Reading struct {
	Text string
}

func validateCardCount(n int) error {
	if n < 1 || n > MaxCards {
		return NewValidationErrorWithValue("cards", "must contain between 1 and 3 cards", n)
	}

	return nil
}
