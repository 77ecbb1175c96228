package acl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gzizouseif24/tarot-reader/internal/adapters/clients"
	"github.com/gzizouseif24/tarot-reader/internal/domain"
	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/platform/logging"
)

// ServiceName identifies the upstream in logs, metrics and /-/ready.
const ServiceName = "dashscope"

// CompletionClientConfig contains configuration for the completion client.
type CompletionClientConfig struct {
	// Client is the instrumented transport. Its base URL is ignored; the
	// endpoint comes from LLM.BaseURL.
	Client *clients.Client

	// LLM carries the model, sampling parameters and credential.
	LLM config.LLMConfig

	// Logger is the structured logger.
	Logger *slog.Logger
}

// CompletionClient implements ports.ReadingGenerator against an
// OpenAI-compatible chat-completion endpoint.
type CompletionClient struct {
	api    *openai.Client
	http   *clients.Client
	llm    config.LLMConfig
	logger *slog.Logger
}

// NewCompletionClient creates the completion adapter. The credential may be
// empty; Generate then fails with a configuration error.
func NewCompletionClient(cfg CompletionClientConfig) (*CompletionClient, error) {
	if cfg.Client == nil {
		return nil, errors.New("completion client: transport client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	apiCfg := openai.DefaultConfig(cfg.LLM.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.LLM.BaseURL, "/")
	apiCfg.HTTPClient = cfg.Client.Doer()

	return &CompletionClient{
		api:    openai.NewClientWithConfig(apiCfg),
		http:   cfg.Client,
		llm:    cfg.LLM,
		logger: logger.With(slog.String("component", "acl.CompletionClient")),
	}, nil
}

// Generate sends prompt as a single user message and returns the trimmed
// text of the first choice. It makes exactly one attempt.
func (c *CompletionClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.APIKeyConfigured() {
		return "", domain.NewConfigurationError(config.CredentialEnvVar, "")
	}

	logger := logging.FromContext(ctx)
	logger.Log(ctx, logging.LevelTrace, "requesting chat completion",
		slog.String("model", c.llm.Model),
		slog.Int("prompt_chars", len(prompt)),
	)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, c.request(prompt))
	if err != nil {
		logger.Warn("chat completion failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return "", mapCompletionError(err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.NewGenerationError("upstream returned no choices", nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", domain.NewGenerationError("upstream returned an empty reading", nil)
	}

	logger.Debug("chat completion received",
		slog.String("model", resp.Model),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("duration", time.Since(start)),
	)

	return text, nil
}

// request builds the wire request. Only the prompt varies per call.
func (c *CompletionClient) request(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.llm.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.llm.Temperature,
		TopP:        c.llm.TopP,
		MaxTokens:   c.llm.MaxTokens,
	}
}

// APIKeyConfigured implements ports.CredentialStatus.
func (c *CompletionClient) APIKeyConfigured() bool {
	return c.llm.HasAPIKey()
}

// Name implements ports.HealthChecker.
func (c *CompletionClient) Name() string {
	return ServiceName
}

// Check implements ports.HealthChecker without calling the upstream: a
// missing credential or an open circuit makes the service unready.
func (c *CompletionClient) Check(_ context.Context) error {
	if !c.APIKeyConfigured() {
		return domain.NewConfigurationError(config.CredentialEnvVar, "")
	}

	return c.http.CircuitError()
}
