package acl

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients"
	"github.com/gzizouseif24/tarot-reader/internal/domain"
)

// mapCompletionError folds every failure of a completion call into a single
// GenerationError, keeping the original error as its cause.
func mapCompletionError(err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
	)

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewGenerationError("upstream temporarily disabled after repeated failures", err)

	case errors.As(err, &apiErr):
		return domain.NewGenerationError(fmt.Sprintf("upstream rejected the request (status %d)", apiErr.HTTPStatusCode), err)

	case errors.As(err, &reqErr):
		return domain.NewGenerationError(fmt.Sprintf("upstream returned status %d", reqErr.HTTPStatusCode), err)

	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewGenerationError("upstream did not answer in time", err)

	default:
		return domain.NewGenerationError("chat completion request failed", err)
	}
}

// mapAnthropicError is mapCompletionError for the Messages API.
func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewGenerationError("upstream temporarily disabled after repeated failures", err)

	case errors.As(err, &apiErr):
		return domain.NewGenerationError(fmt.Sprintf("upstream rejected the request (status %d)", apiErr.StatusCode), err)

	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewGenerationError("upstream did not answer in time", err)

	default:
		return domain.NewGenerationError("message request failed", err)
	}
}
