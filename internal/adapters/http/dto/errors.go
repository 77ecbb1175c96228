// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
)

// ErrorResponse is the standard error envelope for all error responses.
// Detail repeats Error.Message at the top level, where the tarot front-end
// reads it.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Detail  string      `json:"detail,omitempty"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details holds field-level messages for validation failures.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeTooLarge      = "PAYLOAD_TOO_LARGE"
	ErrorCodeConfiguration = "CONFIGURATION_ERROR"
	ErrorCodeGeneration    = "GENERATION_FAILED"
	ErrorCodeTimeout       = "TIMEOUT"
	ErrorCodeInternal      = "INTERNAL_ERROR"
)

// generationMessagePrefix matches the text clients already show for a failed
// reading.
const generationMessagePrefix = "Error generating reading: "

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
		Detail: message,
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
		Detail: message,
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorCodeGeneration:
		return http.StatusBadGateway
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapError translates an error from binding, validation or the reading
// pipeline into a status and envelope. Unknown errors get a generic message.
func MapError(err error) (int, *ErrorResponse) {
	var (
		validationErr *domain.ValidationError
		generationErr *domain.GenerationError
		tooLargeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge, NewErrorResponse(ErrorCodeTooLarge, "request body is too large")

	case errors.Is(err, ErrBinding):
		return http.StatusBadRequest, NewErrorResponse(ErrorCodeBadRequest, "request body is not valid JSON for a reading")

	case IsValidationError(err):
		return http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation, "request validation failed", ValidationErrors(err))

	case errors.As(err, &validationErr):
		resp := NewErrorResponse(ErrorCodeValidation, validationErr.Error())
		if validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}
		return http.StatusBadRequest, resp

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConfiguration(err):
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeConfiguration, "the reading service is not configured")

	case errors.As(err, &generationErr):
		return http.StatusBadGateway, NewErrorResponse(ErrorCodeGeneration, generationMessagePrefix+generationErr.Detail())

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleError writes the mapped error envelope and aborts the chain.
// Server-side failures are logged with the full error.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			slog.Int("status", status),
			slog.String("code", resp.Error.Code),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(status, resp)
}

// requestIDKey is the gin key the request ID middleware stores its
// sanitized ID under.
const requestIDKey = "request_id"

// GetTraceID returns the ID echoed in error envelopes: an explicit trace_id
// on the gin context, then the active span, then the request ID.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
		return ""
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetString(requestIDKey)
}
