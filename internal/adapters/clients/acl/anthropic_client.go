package acl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients"
	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
)

// AnthropicClient implements ports.ReadingGenerator against the Anthropic
// Messages API.
type AnthropicClient struct {
	api    anthropic.Client
	http   *clients.Client
	llm    config.LLMConfig
	logger *slog.Logger
}

// NewAnthropicClient creates the Messages API adapter. It shares the
// transport client with the rest of the service so the circuit breaker and
// tracing apply; SDK retries are disabled.
func NewAnthropicClient(cfg CompletionClientConfig) (*AnthropicClient, error) {
	if cfg.Client == nil {
		return nil, errors.New("anthropic client: transport client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
		option.WithBaseURL(cfg.LLM.BaseURL),
		option.WithHTTPClient(cfg.Client.StandardClient()),
		option.WithMaxRetries(0),
	)

	return &AnthropicClient{
		api:    api,
		http:   cfg.Client,
		llm:    cfg.LLM,
		logger: logger.With(slog.String("component", "acl.AnthropicClient")),
	}, nil
}

// Generate sends prompt as one user message and joins the text blocks of
// the reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.APIKeyConfigured() {
		return "", domain.NewConfigurationError(config.AnthropicCredentialEnvVar, "")
	}

	logger := logging.FromContext(ctx)
	logger.Log(ctx, logging.LevelTrace, "requesting message",
		slog.String("model", c.llm.Model),
		slog.Int("prompt_chars", len(prompt)),
	)

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.llm.Model),
		MaxTokens:   int64(c.llm.MaxTokens),
		Temperature: anthropic.Float(float64(c.llm.Temperature)),
		TopP:        anthropic.Float(float64(c.llm.TopP)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.Warn("message request failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return "", mapAnthropicError(err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", domain.NewGenerationError("upstream returned an empty reading", nil)
	}

	logger.Debug("message received",
		slog.String("model", string(msg.Model)),
		slog.Int64("output_tokens", msg.Usage.OutputTokens),
		slog.String("stop_reason", string(msg.StopReason)),
		slog.Duration("duration", time.Since(start)),
	)

	return text, nil
}

// APIKeyConfigured implements ports.CredentialStatus.
func (c *AnthropicClient) APIKeyConfigured() bool {
	return c.llm.HasAPIKey()
}

// Name implements ports.HealthChecker.
func (c *AnthropicClient) Name() string {
	return config.ProviderAnthropic
}

// Check implements ports.HealthChecker.
func (c *AnthropicClient) Check(_ context.Context) error {
	if !c.APIKeyConfigured() {
		return domain.NewConfigurationError(config.AnthropicCredentialEnvVar, "")
	}

	return c.http.CircuitError()
}
