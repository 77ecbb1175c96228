// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the reading request is malformed.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration indicates the service is missing required configuration,
	// such as the model provider credential.
	ErrConfiguration = errors.New("configuration error")

	// ErrGeneration indicates the language model call failed or returned
	// unusable content.
	ErrGeneration = errors.New("generation failed")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ConfigurationError reports a missing or invalid setting.
// Setting names only; values are never included.
type ConfigurationError struct {
	Setting string
	Reason  string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Setting, e.Reason)
	}

	return e.Setting + " not configured"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError creates a configuration error for the named setting.
func NewConfigurationError(setting, reason string) error {
	return &ConfigurationError{Setting: setting, Reason: reason}
}

// GenerationError wraps a failure of the upstream model call.
// Cause keeps the original failure for errors.As inspection.
type GenerationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return "LLM generation failed: " + e.Detail()
}

// Detail is the failure text without the generic prefix, safe to show to
// callers.
func (e *GenerationError) Detail() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns both the sentinel and the original cause.
func (e *GenerationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrGeneration, e.Cause}
	}

	return []error{ErrGeneration}
}

// NewGenerationError creates a generation error.
func NewGenerationError(message string, cause error) error {
	return &GenerationError{Message: message, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsGeneration checks if an error is a generation error.
func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}
