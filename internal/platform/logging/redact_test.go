package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRedactOptions(t *testing.T) {
	opts := DefaultRedactOptions()
	assert.Greater(t, len(opts), 10, "should have multiple redaction options")
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		name         string
		fieldName    string
		fieldValue   string
		shouldRedact bool
	}{
		{"redact api_key", "api_key", "dashscope-key-value", true},
		{"redact apiKey", "apiKey", "dashscope-key-value", true},
		{"redact dashscope_api_key", "dashscope_api_key", "dashscope-key-value", true},
		{"redact authorization", "authorization", "Bearer token123", true},
		{"redact password", "password", "secret123", true},
		{"redact token", "token", "my-secret-token", true},
		{"redact provider key under any name", "value", "sk-0123456789abcdefABCDEF", true},
		{"do not redact card name", "card_name", "The Lovers", false},
		{"do not redact zodiac sign", "zodiac_sign", "leo", false},
		{"do not redact model", "model", "qwen3-max", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()})
			logger := slog.New(handler)

			logger.Info("test", slog.String(tt.fieldName, tt.fieldValue))

			output := buf.String()
			if tt.shouldRedact {
				assert.NotContains(t, output, tt.fieldValue, "sensitive value should be redacted")
				assert.Contains(t, output, tt.fieldName, "field name should be present")
				assert.True(t,
					strings.Contains(output, "REDACTED") || strings.Contains(output, "***"),
					"output should contain redaction marker",
				)
			} else {
				assert.Contains(t, output, tt.fieldValue, "non-sensitive value should not be redacted")
			}
		})
	}
}

func TestNewReplaceAttr_BearerPattern(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()})
	logger := slog.New(handler)

	logger.Info("upstream request", slog.String("header", "Bearer sk-abc123xyz456"))

	output := buf.String()
	assert.NotContains(t, output, "abc123xyz456", "bearer token value should be redacted")
	assert.Contains(t, output, "header")
}

func TestNewReplaceAttr_SecretPrefix(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()})
	logger := slog.New(handler)

	logger.Info("test", slog.String("secret_config", "sensitive-data"))

	output := buf.String()
	assert.NotContains(t, output, "sensitive-data", "field with secret prefix should be redacted")
	assert.Contains(t, output, "secret_config")
}

func TestNewWithWriter_PrettyFormatRedacts(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Level: "info", Format: "pretty", Service: "tarot-reader", Version: "1.0.0"}

	logger := NewWithWriter(cfg, &buf)
	logger.With(slog.String("api_key", "attr-level-secret")).
		Info("configured", slog.String("authorization", "Bearer record-level-secret"))

	output := buf.String()
	assert.Contains(t, output, "configured")
	assert.NotContains(t, output, "attr-level-secret")
	assert.NotContains(t, output, "record-level-secret")
}

func TestContextLoggerRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))

	ctx := With(WithContext(context.Background(), logger), "request_id", "req-integration-123")

	FromContext(ctx).Info("calling completion endpoint",
		slog.String("model", "qwen3-max"),
		slog.String("api_key", "super-secret"),
	)

	out := buf.String()
	assert.Contains(t, out, "req-integration-123")
	assert.Contains(t, out, "qwen3-max")
	assert.Contains(t, out, "api_key")
	assert.NotContains(t, out, "super-secret")
}
