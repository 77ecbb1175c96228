// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never wire DTOs
//   - Errors use the domain taxonomy (ErrValidation, ErrGeneration, ...)
package ports

import (
	"context"

	"github.com/gzizouseif24/tarot-reader/internal/domain"
)

// ReadingGenerator turns a composed prompt into reading text.
//
// Implementations make exactly one upstream attempt. They return
// domain.ErrConfiguration when no credential is set, without any network
// call, and domain.ErrGeneration for every upstream failure including an
// empty completion.
type ReadingGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CredentialStatus reports whether the model provider credential is set.
// Never exposes the value.
type CredentialStatus interface {
	APIKeyConfigured() bool
}

// ReadingService is the inbound port used by transport adapters.
type ReadingService interface {
	// CreateReading validates the request, composes the prompt and returns
	// the generated reading. Nothing is persisted.
	CreateReading(ctx context.Context, req domain.ReadingRequest) (*domain.Reading, error)
}
